package service

import (
	"context"
	"vantage/internal/domain"
)

// AccountProvider is the mandatory upstream: if it fails the whole
// lookup fails, since the account section anchors everything else.
type AccountProvider interface {
	GetProfile(ctx context.Context, steamID64 string) (*domain.SteamAccount, error)
}

// FaceitProvider and LeetifyProvider are the two independent
// competitive-stat providers; both optional.
type FaceitProvider interface {
	GetStats(ctx context.Context, steamID64 string) (*domain.FaceitStats, error)
}

type LeetifyProvider interface {
	GetStats(ctx context.Context, steamID64 string) (*domain.LeetifyStats, error)
}

// ModeStatsProvider serves the three per-mode stat blocks; all optional.
type ModeStatsProvider interface {
	GetPremierStats(ctx context.Context, steamID64 string) (*domain.PremierStats, error)
	GetCompetitiveStats(ctx context.Context, steamID64 string) (*domain.CompetitiveStats, error)
	GetWingmanStats(ctx context.Context, steamID64 string) (*domain.WingmanStats, error)
}
