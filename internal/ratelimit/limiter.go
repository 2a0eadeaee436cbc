package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vantage/internal/config"
	"vantage/internal/constants"

	"github.com/rs/zerolog"
)

// ErrStoreUnavailable is returned when the counting substrate cannot be
// reached. The limiter never guesses on store failure: callers are
// expected to have refused the request upstream via Healthy.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// Result reports a single check-and-record outcome.
type Result struct {
	Allowed   bool
	Count     int
	Remaining int
	Total     int
	WindowEnd time.Time
}

// Limiter enforces a fixed-window per-client ceiling against a shared
// counter store.
type Limiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	logger zerolog.Logger
}

func NewLimiter(store CounterStore, cfg *config.Config, logger zerolog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		limit:  cfg.RateLimitMax,
		window: cfg.RateLimitWindow,
		logger: logger,
	}
}

// CheckAndRecord atomically increments the window counter for key and
// decides admission from the post-increment count. Every call is
// recorded, including those over the ceiling, so accounting stays
// accurate regardless of the admission outcome.
func (l *Limiter) CheckAndRecord(ctx context.Context, key string) (*Result, error) {
	count, expiresAt, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		l.logger.Error().Err(err).Str("client_key", key).Msg("rate limit increment failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result := &Result{
		Allowed:   count <= int64(l.limit),
		Count:     int(count),
		Remaining: l.limit - int(count),
		Total:     l.limit,
		WindowEnd: expiresAt,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	l.logger.Debug().
		Str("client_key", key).
		Int("count", result.Count).
		Int("total", result.Total).
		Bool("allowed", result.Allowed).
		Time("window_end", result.WindowEnd).
		Msg("rate limit check")

	return result, nil
}

// Healthy probes the counter store independently of any per-key state.
func (l *Limiter) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, constants.RedisTimeout)
	defer cancel()

	if err := l.store.Ping(ctx); err != nil {
		l.logger.Error().Err(err).Msg("rate limit store health check failed")
		return false
	}
	return true
}

// Cleanup removes stale windows. Idempotent; safe to run on a timer.
func (l *Limiter) Cleanup(ctx context.Context) error {
	removed, err := l.store.Sweep(ctx, l.window)
	if err != nil {
		return fmt.Errorf("rate limit cleanup: %w", err)
	}
	if removed > 0 {
		l.logger.Info().Int("removed", removed).Msg("rate limit windows cleaned up")
	}
	return nil
}
