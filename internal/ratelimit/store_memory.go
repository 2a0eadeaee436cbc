package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errStoreDown = errors.New("counter store unavailable")

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

// InMemoryCounterStore is a single-process CounterStore used in tests
// and local development. Not suitable for multi-replica deployments.
type InMemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	down    bool
}

func NewInMemoryCounterStore() *InMemoryCounterStore {
	return &InMemoryCounterStore{windows: make(map[string]*memoryWindow)}
}

func (s *InMemoryCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return 0, time.Time{}, errStoreDown
	}

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		w = &memoryWindow{expiresAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expiresAt, nil
}

func (s *InMemoryCounterStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errStoreDown
	}
	return nil
}

func (s *InMemoryCounterStore) Sweep(ctx context.Context, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		return 0, errStoreDown
	}

	now := time.Now()
	removed := 0
	for key, w := range s.windows {
		if now.After(w.expiresAt) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed, nil
}

// SetDown simulates a substrate outage.
func (s *InMemoryCounterStore) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}
