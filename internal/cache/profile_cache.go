package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"vantage/internal/config"
	"vantage/internal/domain"

	"github.com/rs/zerolog"
)

const profileKeyPrefix = "profile:"

// ProfileCache is a read-through/write-through cache of merged
// profiles, keyed by SteamID64. Caching is an optimization, never a
// correctness dependency: store errors and corrupt entries degrade to
// misses on read and no-ops on write, and never fail a request.
type ProfileCache struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewProfileCache(store Store, cfg *config.Config, logger zerolog.Logger) *ProfileCache {
	return &ProfileCache{store: store, ttl: cfg.CacheTTL, logger: logger}
}

// Get returns the cached profile for steamID64, or nil on a miss.
// Temporal fields come back typed via the JSON round-trip (times are
// stored as RFC3339 text).
func (c *ProfileCache) Get(ctx context.Context, steamID64 string) *domain.UserProfile {
	raw, err := c.store.Get(ctx, profileKeyPrefix+steamID64)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("profile cache read failed, treating as miss")
		}
		return nil
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		c.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("corrupt profile cache entry, treating as miss")
		return nil
	}
	return &profile
}

// Set writes the profile best-effort.
func (c *ProfileCache) Set(ctx context.Context, steamID64 string, profile *domain.UserProfile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		c.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("failed to serialize profile for cache")
		return
	}
	if err := c.store.Set(ctx, profileKeyPrefix+steamID64, raw, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("profile cache write failed")
	}
}

// Invalidate drops the cached profile best-effort.
func (c *ProfileCache) Invalidate(ctx context.Context, steamID64 string) {
	if err := c.store.Del(ctx, profileKeyPrefix+steamID64); err != nil {
		c.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("profile cache invalidate failed")
	}
}
