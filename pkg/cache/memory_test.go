package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "user:1", cachedUser{ID: "1", Name: "Ann"}, time.Minute))

	var got cachedUser
	hit, err := c.Get(ctx, "user:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Ann", got.Name)

	hit, err = c.Get(ctx, "user:2", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	ok, _ := c.Exists(ctx, "k")
	assert.True(t, ok)

	c.now = func() time.Time { return now.Add(2 * time.Second) }
	ok, _ = c.Exists(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheDeletePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "property:1", 1, 0))
	require.NoError(t, c.Set(ctx, "property:2", 2, 0))
	require.NoError(t, c.Set(ctx, "user:1", 3, 0))

	require.NoError(t, c.DeletePattern(ctx, "property:*"))

	ok, _ := c.Exists(ctx, "property:1")
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "user:1")
	assert.True(t, ok)
}
