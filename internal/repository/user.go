package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"vantage/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// UserRepository persists denormalized profile snapshots and lookup
// history in the durable store. Writes here are off the correctness
// path of a request: the pipeline logs failures and still responds.
type UserRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// Upsert writes the denormalized snapshot for a profile, bumping the
// lookup counter on conflict.
func (r *UserRepository) Upsert(ctx context.Context, steamID64 string, profile *domain.UserProfile) error {
	steam := profile.Steam
	if steam == nil {
		return fmt.Errorf("cannot persist profile without account section: %s", steamID64)
	}

	var (
		faceitElo, faceitLevel sql.NullInt64
		leetifyRating          sql.NullFloat64
	)
	if profile.Faceit != nil {
		faceitElo = sql.NullInt64{Int64: int64(profile.Faceit.Elo), Valid: true}
		faceitLevel = sql.NullInt64{Int64: int64(profile.Faceit.Level), Valid: true}
	}
	if profile.Leetify != nil {
		leetifyRating = sql.NullFloat64{Float64: profile.Leetify.Ranks.Leetify, Valid: true}
	}

	riskScore := 0
	riskFlags := []byte("[]")
	var lastCalculated sql.NullTime
	if profile.Risk != nil {
		riskScore = profile.Risk.TotalScore
		if raw, err := json.Marshal(profile.Risk.Flags); err == nil {
			riskFlags = raw
		}
		lastCalculated = sql.NullTime{Time: profile.Risk.CalculatedAt, Valid: true}
	}

	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			steam_id64, username, avatar, profile_url, account_created,
			level, years_of_service, is_private, vac_banned, game_banned,
			days_since_last_ban, faceit_elo, faceit_level, leetify_rating,
			risk_score, risk_flags, last_calculated, last_lookup,
			lookup_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (steam_id64) DO UPDATE SET
			username = excluded.username,
			avatar = excluded.avatar,
			profile_url = excluded.profile_url,
			account_created = excluded.account_created,
			level = excluded.level,
			years_of_service = excluded.years_of_service,
			is_private = excluded.is_private,
			vac_banned = excluded.vac_banned,
			game_banned = excluded.game_banned,
			days_since_last_ban = excluded.days_since_last_ban,
			faceit_elo = excluded.faceit_elo,
			faceit_level = excluded.faceit_level,
			leetify_rating = excluded.leetify_rating,
			risk_score = excluded.risk_score,
			risk_flags = excluded.risk_flags,
			last_calculated = excluded.last_calculated,
			last_lookup = excluded.last_lookup,
			lookup_count = users.lookup_count + 1,
			updated_at = excluded.updated_at`,
		steamID64, steam.Username, steam.Avatar, steam.ProfileURL, steam.AccountCreated,
		steam.Level, steam.YearsOfService, steam.IsPrivate, steam.VACBanned, steam.GameBanned,
		steam.DaysSinceLastBan, faceitElo, faceitLevel, leetifyRating,
		riskScore, string(riskFlags), lastCalculated, now,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", steamID64, err)
	}
	return nil
}

// RecordLookup appends a lookup-history row.
func (r *UserRepository) RecordLookup(ctx context.Context, steamID64, ipAddress, userAgent string) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate lookup id: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO lookups (id, steam_id64, ip_address, user_agent, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, steamID64, ipAddress, userAgent, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record lookup for %s: %w", steamID64, err)
	}
	return nil
}
