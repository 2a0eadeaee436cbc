package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"vantage/internal/config"
	"vantage/internal/constants"
	fxmodules "vantage/internal/fx"
	"vantage/internal/ratelimit"
	"vantage/internal/server"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	srv *server.Server,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	db *sql.DB,
	redisClient *goredis.Client,
	logger zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: c.Handler(srv.Router()),
	}

	sweeper := ratelimit.NewSweeper(limiter, constants.CleanupInterval, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sweeper.Start()
			go func() {
				logger.Info().Str("addr", httpSrv.Addr).Msg("server starting")
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			sweeper.Stop()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			if err := redisClient.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing redis connection")
			}

			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
