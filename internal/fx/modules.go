package fx

import (
	"vantage/internal/admission"
	"vantage/internal/antispam"
	"vantage/internal/api"
	"vantage/internal/cache"
	"vantage/internal/config"
	"vantage/internal/database"
	"vantage/internal/logger"
	"vantage/internal/ratelimit"
	"vantage/internal/redisdb"
	"vantage/internal/repository"
	"vantage/internal/server"
	"vantage/internal/service"
	"vantage/internal/steamid"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func provideCounterStore(client *redis.Client) ratelimit.CounterStore {
	return ratelimit.NewRedisCounterStore(client)
}

func provideCacheStore(client *redis.Client) cache.Store {
	return cache.NewRedisStore(client)
}

func provideResolver(steam *api.SteamClient) *steamid.Resolver {
	return steamid.NewResolver(steam)
}

func provideAggregator(steam *api.SteamClient, faceit *api.FaceitClient, leetify *api.LeetifyClient, log zerolog.Logger) *service.Aggregator {
	return service.NewAggregator(steam, faceit, leetify, steam, log)
}

func provideSnapshots(r *repository.UserRepository) service.SnapshotStore {
	return r
}

func provideCounters(r *repository.StatsRepository) service.StatCounter {
	return r
}

func provideStatsReader(r *repository.StatsRepository) server.StatsReader {
	return r
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(redisdb.New),
	// stores
	fx.Provide(provideCounterStore),
	fx.Provide(provideCacheStore),
	// api clients
	fx.Provide(api.NewSteamClient),
	fx.Provide(api.NewFaceitClient),
	fx.Provide(api.NewLeetifyClient),
	// admission
	fx.Provide(ratelimit.NewLimiter),
	fx.Provide(antispam.NewClassifier),
	fx.Provide(antispam.NewCaptchaVerifier),
	fx.Provide(admission.NewGate),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewStatsRepository),
	fx.Provide(provideSnapshots),
	fx.Provide(provideCounters),
	fx.Provide(provideStatsReader),
	// svc
	fx.Provide(provideResolver),
	fx.Provide(cache.NewProfileCache),
	fx.Provide(provideAggregator),
	fx.Provide(service.NewPipeline),
	// server
	fx.Provide(server.New),
)
