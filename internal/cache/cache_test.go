package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type view struct {
	Total int      `json:"total"`
	Names []string `json:"names"`
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute, time.Minute)

	t.Run("should miss unknown keys", func(t *testing.T) {
		var v view
		found, err := c.Get(ctx, "missing", &v)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should round trip values as copies", func(t *testing.T) {
		in := view{Total: 3, Names: []string{"a"}}
		require.NoError(t, c.Set(ctx, "stats", in, time.Minute))
		in.Names[0] = "mutated"

		var out view
		found, err := c.Get(ctx, "stats", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, view{Total: 3, Names: []string{"a"}}, out)
	})

	t.Run("should delete keys", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
		require.NoError(t, c.Delete(ctx, "a", "b"))

		var n int
		found, _ := c.Get(ctx, "a", &n)
		assert.False(t, found)
	})

	t.Run("should expire entries", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", 1, 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		var n int
		found, err := c.Get(ctx, "short", &n)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
