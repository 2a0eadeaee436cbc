package service

import (
	"context"
	"fmt"
	"vantage/internal/constants"
	"vantage/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// sectionNeeds marks which profile sections must be fetched upstream.
// A section needs a fetch when no cache entry exists or its sub-block
// is absent; teammates additionally re-fetch when prior enrichment
// never completed.
type sectionNeeds struct {
	Steam       bool
	Faceit      bool
	Leetify     bool
	Teammates   bool
	Premier     bool
	Competitive bool
	Wingman     bool
}

func (n sectionNeeds) any() bool {
	return n.Steam || n.Faceit || n.Leetify || n.Teammates || n.Premier || n.Competitive || n.Wingman
}

func computeNeeds(cached *domain.UserProfile) sectionNeeds {
	if cached == nil {
		return sectionNeeds{Steam: true, Faceit: true, Leetify: true, Teammates: true, Premier: true, Competitive: true, Wingman: true}
	}
	return sectionNeeds{
		Steam:       cached.Steam == nil,
		Faceit:      cached.Faceit == nil,
		Leetify:     cached.Leetify == nil,
		Teammates:   teammatesNeedEnrichment(cached.Leetify),
		Premier:     cached.Premier == nil,
		Competitive: cached.Competitive == nil,
		Wingman:     cached.Wingman == nil,
	}
}

// teammatesNeedEnrichment is a heuristic, not an invariant: a first
// entry without a name usually means the prior enrichment pass never
// ran. It can false-positive (harmless re-fetch) or false-negative
// (stale entry accepted) depending on upstream data shape.
func teammatesNeedEnrichment(leetify *domain.LeetifyStats) bool {
	if leetify == nil {
		return true
	}
	if len(leetify.RecentTeammates) == 0 {
		return true
	}
	return leetify.RecentTeammates[0].Name == ""
}

// Aggregator fans out to the upstream providers for whichever sections
// are stale, isolates per-provider failure, and merges results with
// cached data. The account call is the only mandatory one.
type Aggregator struct {
	accounts AccountProvider
	faceit   FaceitProvider
	leetify  LeetifyProvider
	modes    ModeStatsProvider
	logger   zerolog.Logger
}

func NewAggregator(accounts AccountProvider, faceit FaceitProvider, leetify LeetifyProvider, modes ModeStatsProvider, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		accounts: accounts,
		faceit:   faceit,
		leetify:  leetify,
		modes:    modes,
		logger:   logger,
	}
}

// FetchAndMerge fetches the stale sections concurrently and merges them
// over the cached profile: freshly-fetched value if non-nil, else the
// cached value, else absent.
func (a *Aggregator) FetchAndMerge(ctx context.Context, steamID64 string, cached *domain.UserProfile, needs sectionNeeds) (*domain.UserProfile, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	var fetched domain.UserProfile
	g, gCtx := errgroup.WithContext(apiCtx)

	if needs.Steam {
		g.Go(func() error {
			account, err := a.accounts.GetProfile(gCtx, steamID64)
			if err != nil {
				return fmt.Errorf("failed to fetch steam profile: %w", err)
			}
			fetched.Steam = account
			return nil
		})
	}
	if needs.Faceit {
		g.Go(func() error {
			stats, err := a.faceit.GetStats(gCtx, steamID64)
			if err != nil {
				a.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("faceit fetch failed, section left absent")
				return nil
			}
			fetched.Faceit = stats
			return nil
		})
	}
	if needs.Leetify {
		g.Go(func() error {
			stats, err := a.leetify.GetStats(gCtx, steamID64)
			if err != nil {
				a.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("leetify fetch failed, section left absent")
				return nil
			}
			fetched.Leetify = stats
			return nil
		})
	}
	if needs.Premier {
		g.Go(func() error {
			stats, err := a.modes.GetPremierStats(gCtx, steamID64)
			if err != nil {
				a.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("premier fetch failed, section left absent")
				return nil
			}
			fetched.Premier = stats
			return nil
		})
	}
	if needs.Competitive {
		g.Go(func() error {
			stats, err := a.modes.GetCompetitiveStats(gCtx, steamID64)
			if err != nil {
				a.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("competitive fetch failed, section left absent")
				return nil
			}
			fetched.Competitive = stats
			return nil
		})
	}
	if needs.Wingman {
		g.Go(func() error {
			stats, err := a.modes.GetWingmanStats(gCtx, steamID64)
			if err != nil {
				a.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("wingman fetch failed, section left absent")
				return nil
			}
			fetched.Wingman = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := merge(&fetched, cached)
	if merged.Steam == nil {
		return nil, fmt.Errorf("account section unresolved for %s", steamID64)
	}

	if needs.Teammates && merged.Leetify != nil && len(merged.Leetify.RecentTeammates) > 0 {
		a.enrichTeammates(ctx, merged.Leetify)
	}

	return merged, nil
}

func merge(fetched, cached *domain.UserProfile) *domain.UserProfile {
	merged := &domain.UserProfile{
		Steam:       fetched.Steam,
		Faceit:      fetched.Faceit,
		Leetify:     fetched.Leetify,
		Premier:     fetched.Premier,
		Competitive: fetched.Competitive,
		Wingman:     fetched.Wingman,
	}
	if cached == nil {
		return merged
	}
	if merged.Steam == nil {
		merged.Steam = cached.Steam
	}
	if merged.Faceit == nil {
		merged.Faceit = cached.Faceit
	}
	if merged.Leetify == nil {
		merged.Leetify = cached.Leetify
	}
	if merged.Premier == nil {
		merged.Premier = cached.Premier
	}
	if merged.Competitive == nil {
		merged.Competitive = cached.Competitive
	}
	if merged.Wingman == nil {
		merged.Wingman = cached.Wingman
	}
	return merged
}

// enrichTeammates looks up display data for a bounded set of recent
// teammates. Per-item failures keep the unenriched entry.
func (a *Aggregator) enrichTeammates(ctx context.Context, leetify *domain.LeetifyStats) {
	limit := len(leetify.RecentTeammates)
	if limit > constants.TeammateEnrichmentLimit {
		limit = constants.TeammateEnrichmentLimit
	}
	leetify.RecentTeammates = leetify.RecentTeammates[:limit]

	enrichCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	var g errgroup.Group
	for i := range leetify.RecentTeammates {
		g.Go(func() error {
			teammate := &leetify.RecentTeammates[i]
			account, err := a.accounts.GetProfile(enrichCtx, teammate.SteamID64)
			if err != nil {
				a.logger.Debug().Err(err).Str("steam_id64", teammate.SteamID64).Msg("teammate enrichment failed, keeping bare entry")
				return nil
			}
			teammate.Name = account.Username
			teammate.Avatar = account.Avatar
			return nil
		})
	}
	_ = g.Wait()
}
