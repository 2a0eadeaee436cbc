package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper runs the limiter's cleanup on a fixed interval. Failures are
// logged and retried on the next tick; they never terminate the task.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
	logger   zerolog.Logger
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(limiter *Limiter, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		limiter:  limiter,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("rate limit sweeper started")
	for {
		select {
		case <-ticker.C:
			if err := s.limiter.Cleanup(context.Background()); err != nil {
				s.logger.Error().Err(err).Msg("rate limit cleanup failed, retrying next interval")
			}
		case <-s.stop:
			s.logger.Info().Msg("rate limit sweeper stopped")
			return
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}
