package commands

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splashsync/connector/internal/cache"
	"github.com/splashsync/connector/internal/cli/config"
	"github.com/splashsync/connector/internal/web/ratelimit"
)

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	c, err := newCache(ctx, config.CacheConfig{Backend: "memory", TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, c)
	c.Close()

	mr := miniredis.RunT(t)
	c, err = newCache(ctx, config.CacheConfig{Backend: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisCache{}, c)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("splash:k"))
	c.Close()
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg, err := config.LoadFrom(tempConfig(t))
	require.NoError(t, err)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.PprofAddr = "127.0.0.1:0"
	cfg.Commit.FlushInterval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestNewCommitLimiter(t *testing.T) {
	l, closeFn, err := newCommitLimiter(0, nil)
	require.NoError(t, err)
	assert.Nil(t, l)
	closeFn()

	mem := cache.NewMemoryCache()
	defer mem.Close()
	l, closeFn, err = newCommitLimiter(10, mem)
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.TokenBucket{}, l)
	closeFn()

	mr := miniredis.RunT(t)
	rc, err := newCache(context.Background(), config.CacheConfig{Backend: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer rc.Close()
	l, closeFn, err = newCommitLimiter(10, rc)
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.RedisLimiter{}, l)
	closeFn()
}
