package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Atomic increment that sets the TTL on the first hit of a window.
// KEYS[1] = counter key, ARGV[1] = window in seconds. Returns {count, ttl}.
var windowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

// RedisStore counts requests in fixed windows shared by every server instance.
type RedisStore struct {
	client redis.Scripter
}

// NewRedisStore wraps a go-redis client
func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient parses a redis:// or rediss:// URL and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// Take implements Store
func (s *RedisStore) Take(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	seconds := max(int(window.Seconds()), 1)

	result, err := windowScript.Run(ctx, s.client, []string{key}, seconds).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit script failed: %w", err)
	}
	if len(result) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result %v", result)
	}

	ttl := result[1]
	if ttl < 0 {
		ttl = int64(seconds)
	}
	return int(result[0]), time.Now().Add(time.Duration(ttl) * time.Second), nil
}
