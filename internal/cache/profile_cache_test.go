package cache

import (
	"context"
	"testing"
	"time"
	"vantage/internal/config"
	"vantage/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(ttl time.Duration) (*ProfileCache, *MemoryStore) {
	store := NewMemoryStore()
	c := NewProfileCache(store, &config.Config{CacheTTL: ttl}, zerolog.Nop())
	return c, store
}

func sampleProfile() *domain.UserProfile {
	created := time.Date(2019, 3, 14, 9, 26, 53, 0, time.UTC)
	return &domain.UserProfile{
		Steam: &domain.SteamAccount{
			SteamID64:      "76561198000000000",
			Username:       "player",
			AccountCreated: created,
		},
		Faceit: &domain.FaceitStats{Elo: 2100, Level: 10},
		Risk: &domain.RiskAssessment{
			TotalScore:   30,
			Level:        domain.RiskMedium,
			Flags:        []domain.RiskFlag{{Flag: "NEW_ACCOUNT", Weight: 30, Reason: "test"}},
			CalculatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestProfileCacheRoundTrip(t *testing.T) {
	c, _ := newCache(time.Minute)
	ctx := context.Background()

	profile := sampleProfile()
	c.Set(ctx, "76561198000000000", profile)

	got := c.Get(ctx, "76561198000000000")
	require.NotNil(t, got)
	assert.Equal(t, profile, got)

	// Temporal fields survive the text round-trip as typed values.
	assert.True(t, got.Steam.AccountCreated.Equal(profile.Steam.AccountCreated))
	assert.True(t, got.Risk.CalculatedAt.Equal(profile.Risk.CalculatedAt))
}

func TestProfileCacheMiss(t *testing.T) {
	c, _ := newCache(time.Minute)
	assert.Nil(t, c.Get(context.Background(), "76561198000000000"))
}

func TestProfileCacheCorruptEntryIsMiss(t *testing.T) {
	c, store := newCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "profile:76561198000000000", []byte("{not-json"), time.Minute))
	assert.Nil(t, c.Get(ctx, "76561198000000000"))
}

func TestProfileCacheExpiry(t *testing.T) {
	c, _ := newCache(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "76561198000000000", sampleProfile())
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, c.Get(ctx, "76561198000000000"))
}

func TestProfileCacheInvalidate(t *testing.T) {
	c, _ := newCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "76561198000000000", sampleProfile())
	c.Invalidate(ctx, "76561198000000000")
	assert.Nil(t, c.Get(ctx, "76561198000000000"))
}

func TestProfileCachePartialSectionsPreserved(t *testing.T) {
	c, _ := newCache(time.Minute)
	ctx := context.Background()

	profile := &domain.UserProfile{Steam: sampleProfile().Steam}
	c.Set(ctx, "76561198000000000", profile)

	got := c.Get(ctx, "76561198000000000")
	require.NotNil(t, got)
	assert.NotNil(t, got.Steam)
	assert.Nil(t, got.Faceit)
	assert.Nil(t, got.Leetify)
	assert.Nil(t, got.Premier)
}
