package service

import (
	"context"
	"fmt"
	"vantage/internal/admission"
	"vantage/internal/cache"
	"vantage/internal/constants"
	"vantage/internal/domain"
	"vantage/internal/risk"
	"vantage/internal/steamid"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const totalSearchesKey = "total_searches"

// SnapshotStore persists denormalized profile snapshots and lookup
// history; backed by the durable relational store.
type SnapshotStore interface {
	Upsert(ctx context.Context, steamID64 string, profile *domain.UserProfile) error
	RecordLookup(ctx context.Context, steamID64, ipAddress, userAgent string) error
}

// StatCounter increments monotonic counters in the durable store.
type StatCounter interface {
	Increment(ctx context.Context, key string) error
}

// LookupRequest is one inbound profile lookup.
type LookupRequest struct {
	Identity  string
	Admission admission.Request
}

// LookupOutcome separates admission refusals (Decision.Status) from
// successful lookups (Profile). Profile is nil unless admitted and
// resolved.
type LookupOutcome struct {
	Decision *admission.Decision
	Profile  *domain.UserProfile
}

// Pipeline orchestrates one lookup end to end: admission, identity
// resolution, cache consultation, upstream fetch-and-merge, risk
// scoring, and persistence side effects.
type Pipeline struct {
	gate       *admission.Gate
	resolver   *steamid.Resolver
	cache      *cache.ProfileCache
	aggregator *Aggregator
	users      SnapshotStore
	stats      StatCounter
	logger     zerolog.Logger
}

func NewPipeline(
	gate *admission.Gate,
	resolver *steamid.Resolver,
	profileCache *cache.ProfileCache,
	aggregator *Aggregator,
	users SnapshotStore,
	stats StatCounter,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		gate:       gate,
		resolver:   resolver,
		cache:      profileCache,
		aggregator: aggregator,
		users:      users,
		stats:      stats,
		logger:     logger,
	}
}

func (p *Pipeline) Lookup(ctx context.Context, req LookupRequest) (*LookupOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	decision, err := p.gate.Check(ctx, req.Admission)
	if err != nil {
		p.logger.Error().Err(err).Msg("admission check errored")
	}
	outcome := &LookupOutcome{Decision: decision}
	if decision.Status != admission.Admitted {
		return outcome, nil
	}

	steamID64, err := p.resolver.Resolve(ctx, req.Identity)
	if err != nil {
		return nil, err
	}

	logger := p.logger.With().Str("steam_id64", steamID64).Logger()

	cached := p.cache.Get(ctx, steamID64)
	needs := computeNeeds(cached)
	if !needs.any() {
		logger.Info().Msg("full cache hit")
		outcome.Profile = cached
		return outcome, nil
	}

	logger.Debug().
		Bool("steam", needs.Steam).
		Bool("faceit", needs.Faceit).
		Bool("leetify", needs.Leetify).
		Bool("teammates", needs.Teammates).
		Bool("premier", needs.Premier).
		Bool("competitive", needs.Competitive).
		Bool("wingman", needs.Wingman).
		Msg("partial cache miss")

	profile, err := p.aggregator.FetchAndMerge(ctx, steamID64, cached, needs)
	if err != nil {
		logger.Error().Err(err).Msg("fetch and merge failed")
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	assessment := risk.Calculate(risk.Input{
		Steam:   profile.Steam,
		Faceit:  profile.Faceit,
		Leetify: profile.Leetify,
	})
	profile.Risk = &assessment

	p.persist(ctx, steamID64, profile, req.Admission)

	logger.Info().
		Int("risk_score", assessment.TotalScore).
		Str("risk_level", string(assessment.Level)).
		Msg("profile built")

	outcome.Profile = profile
	return outcome, nil
}

// persist runs the durable write, the cache write, and the counter
// increment as independent best-effort tasks, joined before the
// response so data is durably recorded first. None of them can fail
// the request.
func (p *Pipeline) persist(ctx context.Context, steamID64 string, profile *domain.UserProfile, meta admission.Request) {
	var g errgroup.Group

	g.Go(func() error {
		dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
		defer cancel()
		if err := p.users.Upsert(dbCtx, steamID64, profile); err != nil {
			p.logger.Error().Err(err).Str("steam_id64", steamID64).Msg("failed to persist profile snapshot")
			return nil
		}
		if err := p.users.RecordLookup(dbCtx, steamID64, meta.RemoteAddr, meta.UserAgent); err != nil {
			p.logger.Warn().Err(err).Str("steam_id64", steamID64).Msg("failed to record lookup")
		}
		return nil
	})

	g.Go(func() error {
		p.cache.Set(ctx, steamID64, profile)
		return nil
	})

	g.Go(func() error {
		dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
		defer cancel()
		if err := p.stats.Increment(dbCtx, totalSearchesKey); err != nil {
			p.logger.Warn().Err(err).Msg("failed to increment search counter")
		}
		return nil
	})

	_ = g.Wait()
}
