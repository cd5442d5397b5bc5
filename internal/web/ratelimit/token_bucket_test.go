package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBucket(capacity int, period time.Duration) (*TokenBucket, *time.Time) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := NewTokenBucket(TokenBucketConfig{Capacity: capacity, Period: period})
	tb.now = func() time.Time { return now }
	return tb, &now
}

func TestTokenBucket_Exhausts(t *testing.T) {
	tb, _ := newTestBucket(3, time.Minute)
	defer tb.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := tb.Allow(ctx, "Order")
		require.NoError(t, err)
		assert.True(t, info.Allowed, "request %d", i)
		assert.Equal(t, 2-i, info.Remaining)
		assert.Equal(t, 3, info.Limit)
	}

	info, err := tb.Allow(ctx, "Order")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	// keys are independent
	info, err = tb.Allow(ctx, "Product")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestTokenBucket_Refills(t *testing.T) {
	tb, now := newTestBucket(60, time.Minute)
	defer tb.Close()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		_, err := tb.Allow(ctx, "k")
		require.NoError(t, err)
	}
	info, _ := tb.Allow(ctx, "k")
	require.False(t, info.Allowed)

	*now = now.Add(2 * time.Second)
	info, _ = tb.Allow(ctx, "k")
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)

	*now = now.Add(time.Hour)
	info, _ = tb.Allow(ctx, "k")
	assert.Equal(t, 59, info.Remaining, "refill is capped at capacity")
}

func TestTokenBucket_RemoveIdle(t *testing.T) {
	tb, now := newTestBucket(5, time.Minute)
	defer tb.Close()

	_, _ = tb.Allow(context.Background(), "a")
	*now = now.Add(30 * time.Second)
	_, _ = tb.Allow(context.Background(), "b")
	require.Equal(t, 2, tb.Len())

	*now = now.Add(45 * time.Second)
	tb.removeIdle()
	assert.Equal(t, 1, tb.Len())
}

func TestTokenBucket_CanceledContext(t *testing.T) {
	tb, _ := newTestBucket(1, time.Minute)
	defer tb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tb.Allow(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, tb.Close(), "double close")
}
