package enricher

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Hour)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "Acme", Rating{Value: "3.1"}))
	r, ok, err := c.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3.1", r.Value)

	now = now.Add(2 * time.Hour)
	_, ok, err = c.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_EmptyRatingIsAHit(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	require.NoError(t, c.Set(ctx, "Unknown", Rating{}))

	_, ok, err := c.Get(ctx, "Unknown")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("set REDIS_ADDR to run against a live redis")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr, "jd-crawler:test:", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	n := 7
	require.NoError(t, c.Set(ctx, "Acme", Rating{Value: "2.8", ReviewCount: &n}))
	r, ok, err := c.Get(ctx, "Acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2.8", r.Value)
	assert.Equal(t, 7, *r.ReviewCount)

	_, ok, err = c.Get(ctx, "missing-company")
	require.NoError(t, err)
	assert.False(t, ok)
}
