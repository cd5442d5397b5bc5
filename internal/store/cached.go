package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/cache"
	"github.com/splashsync/connector/internal/fields"
)

// Cached is a read-through cache in front of a Repository. Single field
// reads and full listings are cached; writes invalidate both.
type Cached struct {
	Repository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps repo with c. A zero ttl uses the cache default.
func NewCached(repo Repository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{Repository: repo, cache: c, ttl: ttl, logger: logger}
}

func fieldKey(objectType, id string) string {
	return "fields:" + objectType + ":" + id
}

func listKey(objectType string) string {
	return "fields-list:" + objectType
}

func (c *Cached) Get(ctx context.Context, objectType, id string) (*fields.Field, error) {
	key := fieldKey(objectType, id)

	var f fields.Field
	err := cache.GetJSON(ctx, c.cache, key, &f)
	if err == nil {
		return &f, nil
	}
	if !cache.IsCacheMiss(err) {
		c.logger.Warn("field cache read failed", zap.String("key", key), zap.Error(err))
	}

	stored, err := c.Repository.Get(ctx, objectType, id)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.cache, key, stored, c.ttl); err != nil {
		c.logger.Warn("field cache write failed", zap.String("key", key), zap.Error(err))
	}
	return stored, nil
}

func (c *Cached) List(ctx context.Context, objectType string) ([]*fields.Field, error) {
	key := listKey(objectType)

	var cached []*fields.Field
	err := cache.GetJSON(ctx, c.cache, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !cache.IsCacheMiss(err) {
		c.logger.Warn("field list cache read failed", zap.String("key", key), zap.Error(err))
	}

	stored, err := c.Repository.List(ctx, objectType)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.cache, key, stored, c.ttl); err != nil {
		c.logger.Warn("field list cache write failed", zap.String("key", key), zap.Error(err))
	}
	return stored, nil
}

func (c *Cached) Save(ctx context.Context, objectType string, f *fields.Field) error {
	if err := c.Repository.Save(ctx, objectType, f); err != nil {
		return err
	}
	c.invalidate(ctx, objectType, f.ID)
	return nil
}

func (c *Cached) Delete(ctx context.Context, objectType, id string) error {
	if err := c.Repository.Delete(ctx, objectType, id); err != nil {
		return err
	}
	c.invalidate(ctx, objectType, id)
	return nil
}

func (c *Cached) invalidate(ctx context.Context, objectType, id string) {
	for _, key := range []string{fieldKey(objectType, id), listKey(objectType)} {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn("field cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}
