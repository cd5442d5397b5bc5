// Package cache provides the key/value caches used in front of the field
// store: an in-process memory cache and a Redis-backed cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the interface for all cache backends
type Cache interface {
	// Get retrieves a value, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value; a zero ttl uses the backend default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Clear removes every key under the cache prefix
	Clear(ctx context.Context) error

	Exists(ctx context.Context, key string) (bool, error)

	Close() error
}

// Config holds common configuration for cache backends
type Config struct {
	// DefaultTTL applies when Set is called with a zero ttl
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "splash:",
	}
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func missError(key string) error {
	return fmt.Errorf("%w: %s", ErrCacheMiss, key)
}

// GetJSON reads key and decodes it into dst.
func GetJSON(ctx context.Context, c Cache, key string, dst interface{}) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
