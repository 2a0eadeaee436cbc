package redisdb

import (
	"context"
	"fmt"
	"time"
	"vantage/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// New connects to the shared Redis instance backing both the rate-limit
// counter store and the profile cache. Startup retries briefly so a
// racing container boot does not kill the process; after that, outages
// surface through the limiter's health probe.
func New(cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("redis connection established")
	return client, nil
}
