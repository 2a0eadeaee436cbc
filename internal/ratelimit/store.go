package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the shared counting substrate behind the limiter.
// Increment must be atomic with respect to concurrent callers on the
// same key: the returned count decides admission, so a read-then-write
// implementation would allow two requests past the last slot.
type CounterStore interface {
	// Increment bumps the window counter for key, creating the window
	// (with its expiry) on first sight. Returns the post-increment
	// count and the window's expiry time.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, expiresAt time.Time, err error)

	// Ping probes the substrate independently of any per-key state.
	Ping(ctx context.Context) error

	// Sweep removes windows that outlived their expiry or were left
	// without one. Returns how many entries were removed.
	Sweep(ctx context.Context, window time.Duration) (int, error)
}
