package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is an in-memory limiter refilling Capacity tokens per Period
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	period   time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

type bucket struct {
	tokens float64
	last   time.Time
}

// TokenBucketConfig configures a TokenBucket
type TokenBucketConfig struct {
	Capacity int
	Period   time.Duration
	// CleanupInterval drops idle buckets; zero disables cleanup
	CleanupInterval time.Duration
}

// NewTokenBucket creates a limiter. Call Close to stop its cleanup loop.
func NewTokenBucket(cfg TokenBucketConfig) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		capacity: cfg.Capacity,
		period:   cfg.Period,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go tb.cleanupLoop(cfg.CleanupInterval)
	}
	return tb
}

// Allow takes one token from key's bucket
func (tb *TokenBucket) Allow(ctx context.Context, key string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(tb.capacity), last: now}
		tb.buckets[key] = b
	}

	if elapsed := now.Sub(b.last); elapsed > 0 {
		b.tokens += float64(tb.capacity) * elapsed.Seconds() / tb.period.Seconds()
		if b.tokens > float64(tb.capacity) {
			b.tokens = float64(tb.capacity)
		}
		b.last = now
	}

	info := Info{Limit: tb.capacity}
	if b.tokens >= 1 {
		b.tokens--
		info.Allowed = true
	}
	info.Remaining = int(b.tokens)
	info.ResetAt = now.Add(tb.untilFull(b.tokens))
	return info, nil
}

func (tb *TokenBucket) untilFull(tokens float64) time.Duration {
	missing := float64(tb.capacity) - tokens
	return time.Duration(missing / float64(tb.capacity) * float64(tb.period))
}

func (tb *TokenBucket) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tb.removeIdle()
		case <-tb.done:
			return
		}
	}
}

// removeIdle drops buckets that refilled completely, they equal a new bucket
func (tb *TokenBucket) removeIdle() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	for key, b := range tb.buckets {
		if now.Sub(b.last) >= tb.period {
			delete(tb.buckets, key)
		}
	}
}

// Len returns the number of tracked keys
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

// Close stops the cleanup loop
func (tb *TokenBucket) Close() error {
	tb.once.Do(func() { close(tb.done) })
	return nil
}
