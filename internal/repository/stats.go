package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// StatsRepository keeps monotonic process-wide counters in the durable
// store (e.g. total_searches).
type StatsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStatsRepository(db *sql.DB, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{db: db, logger: logger}
}

func (r *StatsRepository) Increment(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stats (key, value) VALUES (?, 1)
		ON CONFLICT (key) DO UPDATE SET value = stats.value + 1`, key)
	if err != nil {
		return fmt.Errorf("failed to increment stat %s: %w", key, err)
	}
	return nil
}

func (r *StatsRepository) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM stats WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get stat %s: %w", key, err)
	}
	return value, nil
}
