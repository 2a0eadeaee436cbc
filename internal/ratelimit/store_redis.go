package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// incrScript performs the increment and window setup as one atomic
// operation. The PTTL re-check repairs keys that lost their expiry.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisCounterStore backs the limiter with a shared Redis instance so
// counts survive restarts and are consistent across replicas.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	res, err := incrScript.Run(ctx, s.client, []string{keyPrefix + key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("increment %s: %w", key, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("increment %s: unexpected reply %v", key, res)
	}

	count, _ := res[0].(int64)
	ttlMs, _ := res[1].(int64)
	return count, time.Now().Add(time.Duration(ttlMs) * time.Millisecond), nil
}

func (s *RedisCounterStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Sweep deletes windows left without an expiry. Keys with a TTL expire
// on their own; a key with PTTL == -1 would otherwise count forever.
func (s *RedisCounterStore) Sweep(ctx context.Context, window time.Duration) (int, error) {
	var removed int
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := s.client.PTTL(ctx, key).Result()
		if err != nil {
			return removed, fmt.Errorf("pttl %s: %w", key, err)
		}
		if ttl == -1 {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return removed, fmt.Errorf("del %s: %w", key, err)
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan: %w", err)
	}
	return removed, nil
}
