package dedup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewMemoryGuard(time.Minute)
	g.now = func() time.Time { return now }

	ok, err := g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Acquire(ctx, "k")
	assert.False(t, ok, "held key")

	ok, _ = g.Acquire(ctx, "other")
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, "k"))
	ok, _ = g.Acquire(ctx, "k")
	assert.True(t, ok, "released key")
}

func TestMemoryGuardExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewMemoryGuard(time.Minute)
	g.now = func() time.Time { return now }

	ok, _ := g.Acquire(ctx, "k")
	require.True(t, ok)

	now = now.Add(59 * time.Second)
	ok, _ = g.Acquire(ctx, "k")
	assert.False(t, ok)

	now = now.Add(time.Second)
	ok, _ = g.Acquire(ctx, "k")
	assert.True(t, ok)
	assert.Len(t, g.keys, 1)
}

func TestNewRedisGuardRejectsBadURL(t *testing.T) {
	_, err := NewRedisGuard(context.Background(), "not-a-redis-url", time.Minute)
	assert.ErrorContains(t, err, "parse redis url")
}

// TestRedisGuard needs a reachable server; set REDIS_URL to run it.
func TestRedisGuard(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	g, err := NewRedisGuard(ctx, url, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	key := uuid.NewString()
	t.Cleanup(func() { _ = g.rdb.Del(context.Background(), keyPrefix+key).Err() })

	ok, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := g.rdb.TTL(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	ok, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "held key")

	require.NoError(t, g.Release(ctx, key))
	exists, err := g.rdb.Exists(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	ok, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "released key")
}
