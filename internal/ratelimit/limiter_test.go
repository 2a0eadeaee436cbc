package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
	"vantage/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type LimiterSuite struct {
	suite.Suite
	store   *InMemoryCounterStore
	limiter *Limiter
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.store = NewInMemoryCounterStore()
	s.limiter = NewLimiter(s.store, &config.Config{
		RateLimitMax:    10,
		RateLimitWindow: time.Minute,
	}, zerolog.Nop())
}

func (s *LimiterSuite) TestSequentialWithinCeiling() {
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		result, err := s.limiter.CheckAndRecord(ctx, "client-a")
		s.Require().NoError(err)
		s.True(result.Allowed, "request %d", i)
		s.Equal(i, result.Count)
		s.Equal(10-i, result.Remaining)
		s.Equal(10, result.Total)
	}

	result, err := s.limiter.CheckAndRecord(ctx, "client-a")
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(11, result.Count)
	s.Equal(0, result.Remaining)
}

func (s *LimiterSuite) TestIndependentKeys() {
	ctx := context.Background()

	for range 10 {
		_, err := s.limiter.CheckAndRecord(ctx, "client-a")
		s.Require().NoError(err)
	}

	result, err := s.limiter.CheckAndRecord(ctx, "client-b")
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(1, result.Count)
}

// At the boundary (count = ceiling-1) two concurrent calls must admit
// exactly one, never both and never neither.
func (s *LimiterSuite) TestConcurrentBoundary() {
	ctx := context.Background()

	for range 9 {
		_, err := s.limiter.CheckAndRecord(ctx, "client-a")
		s.Require().NoError(err)
	}

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.limiter.CheckAndRecord(ctx, "client-a")
			s.NoError(err)
			results[i] = result
		}()
	}
	wg.Wait()

	admitted := 0
	for _, r := range results {
		if r.Allowed {
			admitted++
		}
	}
	s.Equal(1, admitted)
}

func (s *LimiterSuite) TestWindowExpiryResets() {
	limiter := NewLimiter(s.store, &config.Config{
		RateLimitMax:    2,
		RateLimitWindow: 20 * time.Millisecond,
	}, zerolog.Nop())
	ctx := context.Background()

	for range 3 {
		_, err := limiter.CheckAndRecord(ctx, "client-a")
		s.Require().NoError(err)
	}

	time.Sleep(30 * time.Millisecond)

	result, err := limiter.CheckAndRecord(ctx, "client-a")
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(1, result.Count)
}

func (s *LimiterSuite) TestStoreFailurePropagates() {
	s.store.SetDown(true)

	_, err := s.limiter.CheckAndRecord(context.Background(), "client-a")
	s.Require().Error(err)
	s.ErrorIs(err, ErrStoreUnavailable)
}

func (s *LimiterSuite) TestHealthy() {
	s.True(s.limiter.Healthy(context.Background()))

	s.store.SetDown(true)
	s.False(s.limiter.Healthy(context.Background()))
}

func (s *LimiterSuite) TestCleanupRemovesExpiredWindows() {
	limiter := NewLimiter(s.store, &config.Config{
		RateLimitMax:    5,
		RateLimitWindow: 10 * time.Millisecond,
	}, zerolog.Nop())
	ctx := context.Background()

	_, err := limiter.CheckAndRecord(ctx, "client-a")
	s.Require().NoError(err)
	_, err = limiter.CheckAndRecord(ctx, "client-b")
	s.Require().NoError(err)

	time.Sleep(20 * time.Millisecond)

	s.Require().NoError(limiter.Cleanup(ctx))
	s.Empty(s.store.windows)

	// Idempotent.
	s.Require().NoError(limiter.Cleanup(ctx))
}
