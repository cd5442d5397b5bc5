package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-process cache with per-item expiry.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]memoryItem
	config Config
	cancel context.CancelFunc
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// NewMemoryCache creates a memory cache with the default configuration.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(DefaultConfig())
}

// NewMemoryCacheWithConfig creates a memory cache and starts its sweeper.
// Call Close to stop the sweeper.
func NewMemoryCacheWithConfig(config Config) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		items:  make(map[string]memoryItem),
		config: config,
		cancel: cancel,
	}
	go mc.sweep(ctx, time.Minute)
	return mc
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	item, ok := m.items[m.config.Prefix+key]
	m.mu.RUnlock()

	if !ok || item.expired(time.Now()) {
		return nil, missError(key)
	}
	return item.value, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[m.config.Prefix+key] = item
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.items, m.config.Prefix+key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	for k := range m.items {
		if strings.HasPrefix(k, m.config.Prefix) {
			delete(m.items, k)
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if IsCacheMiss(err) {
		return false, nil
	}
	return err == nil, err
}

// Close stops the background sweeper.
func (m *MemoryCache) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

// Len returns the number of stored items, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryCache) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeExpired(time.Now())
		}
	}
}

func (m *MemoryCache) removeExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, item := range m.items {
		if item.expired(now) {
			delete(m.items, k)
		}
	}
}
