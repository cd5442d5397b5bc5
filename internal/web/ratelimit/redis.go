package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding window limiter shared by every process using
// the same Redis.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// RedisConfig configures a RedisLimiter
type RedisConfig struct {
	Limit  int
	Window time.Duration
	Prefix string
}

// slidingWindow trims entries older than the window, then records the
// request if the window still has room. Returns {allowed, count}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, ttl)
	return {1, current + 1}
end
return {0, current}
`)

// NewRedisLimiter creates a limiter on client
func NewRedisLimiter(client redis.UniversalClient, cfg RedisConfig) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if cfg.Window <= 0 {
		return nil, errors.New("window must be greater than 0")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit:"
	}
	return &RedisLimiter{client: client, limit: cfg.Limit, window: cfg.Window, prefix: cfg.Prefix}, nil
}

// Allow records one request for key if the window has room
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Info, error) {
	now := time.Now()
	res, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixNano(),
		now.Add(-r.window).UnixNano(),
		r.limit,
		r.window.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Info{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return Info{}, errors.New("unexpected redis rate limit result")
	}

	remaining := r.limit - int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return Info{
		Limit:     r.limit,
		Remaining: remaining,
		ResetAt:   now.Add(r.window),
		Allowed:   res[0] == 1,
	}, nil
}

// Reset forgets every request recorded for key
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
