package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splashsync/connector/internal/cache"
	"github.com/splashsync/connector/internal/fields"
)

func TestCached_ReadThroughAndInvalidate(t *testing.T) {
	s := openSQLite(t)
	mem := cache.NewMemoryCache()
	defer mem.Close()

	c := NewCached(s, mem, 0, nil)
	ctx := context.Background()

	f := fields.NewField(fields.TypeVarchar, "ref").MustBuild()
	require.NoError(t, c.Save(ctx, "Order", f))

	got, err := c.Get(ctx, "Order", "ref")
	require.NoError(t, err)
	assert.Equal(t, "ref", got.Name)

	ok, err := mem.Exists(ctx, fieldKey("Order", "ref"))
	require.NoError(t, err)
	assert.True(t, ok)

	// A write behind the cache stays invisible until invalidated.
	f.Name = "Reference"
	require.NoError(t, s.Save(ctx, "Order", f))
	got, _ = c.Get(ctx, "Order", "ref")
	assert.Equal(t, "ref", got.Name)

	require.NoError(t, c.Save(ctx, "Order", f))
	got, _ = c.Get(ctx, "Order", "ref")
	assert.Equal(t, "Reference", got.Name)
}

func TestCached_ListWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), cache.DefaultConfig())
	defer rc.Close()

	s := openSQLite(t)
	c := NewCached(s, rc, 0, nil)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "Order", fields.NewField(fields.TypeInt, "qty").InList("lines").MustBuild()))

	list, err := c.List(ctx, "Order")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, mr.Exists("splash:"+listKey("Order")))

	require.NoError(t, c.Delete(ctx, "Order", "qty@lines"))
	assert.False(t, mr.Exists("splash:"+listKey("Order")))

	list, err = c.List(ctx, "Order")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = c.Get(ctx, "Order", "qty@lines")
	assert.ErrorIs(t, err, ErrNotFound)
}
