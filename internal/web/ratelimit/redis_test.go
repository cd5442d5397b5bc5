package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewRedisLimiter_InvalidConfig(t *testing.T) {
	client, _ := setupRedis(t)

	tests := []struct {
		name    string
		client  redis.UniversalClient
		cfg     RedisConfig
		wantErr string
	}{
		{"nil client", nil, RedisConfig{Limit: 1, Window: time.Second}, "redis client is required"},
		{"zero limit", client, RedisConfig{Window: time.Second}, "limit must be greater than 0"},
		{"zero window", client, RedisConfig{Limit: 1}, "window must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRedisLimiter(tt.client, tt.cfg)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestRedisLimiter_Allow(t *testing.T) {
	client, mr := setupRedis(t)
	l, err := NewRedisLimiter(client, RedisConfig{Limit: 2, Window: time.Minute, Prefix: "splash:rl:"})
	require.NoError(t, err)
	ctx := context.Background()

	info, err := l.Allow(ctx, "commits:Order")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)

	info, err = l.Allow(ctx, "commits:Order")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	info, err = l.Allow(ctx, "commits:Order")
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	assert.True(t, mr.Exists("splash:rl:commits:Order"))

	require.NoError(t, l.Reset(ctx, "commits:Order"))
	info, err = l.Allow(ctx, "commits:Order")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	client, mr := setupRedis(t)
	l, err := NewRedisLimiter(client, RedisConfig{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	mr.Close()
	_, err = l.Allow(context.Background(), "k")
	assert.ErrorContains(t, err, "redis rate limit check failed")
}
