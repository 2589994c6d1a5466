package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	IDs []uint `json:"ids"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	t.Run("miss", func(t *testing.T) {
		var got entry
		assert.ErrorIs(t, c.Get(ctx, "absent", &got), ErrCacheMiss)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "report:blacklist:1", entry{IDs: []uint{0, 4}}, time.Minute))

		var got entry
		require.NoError(t, c.Get(ctx, "report:blacklist:1", &got))
		assert.Equal(t, []uint{0, 4}, got.IDs)

		ok, err := c.Exists(ctx, "report:blacklist:1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", entry{}, -time.Second))
		var got entry
		assert.ErrorIs(t, c.Get(ctx, "short", &got), ErrCacheMiss)
	})

	t.Run("delete and pattern", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "report:blacklist:2", entry{}, time.Minute))
		require.NoError(t, c.Set(ctx, "report:blacklist:3", entry{}, time.Minute))
		require.NoError(t, c.Set(ctx, "other", entry{}, time.Minute))

		require.NoError(t, c.Delete(ctx, "report:blacklist:2"))
		ok, _ := c.Exists(ctx, "report:blacklist:2")
		assert.False(t, ok)

		require.NoError(t, c.InvalidatePattern(ctx, "report:blacklist:*"))
		ok, _ = c.Exists(ctx, "report:blacklist:3")
		assert.False(t, ok)
		ok, _ = c.Exists(ctx, "other")
		assert.True(t, ok)
	})
}
