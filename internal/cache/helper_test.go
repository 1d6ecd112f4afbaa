package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Users int64 `json:"users"`
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb)
}

func TestCacheAside_PopulatesAndHits(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *snapshot) func() error {
		return func() error {
			calls++
			dest.Users = 3
			return nil
		}
	}

	var first snapshot
	require.NoError(t, c.CacheAside(ctx, "analytics", AnalyticsKey, &first, AnalyticsTTL, fetch(&first)))
	assert.Equal(t, int64(3), first.Users)
	assert.True(t, mr.Exists(AnalyticsKey))

	var second snapshot
	require.NoError(t, c.CacheAside(ctx, "analytics", AnalyticsKey, &second, AnalyticsTTL, fetch(&second)))
	assert.Equal(t, int64(3), second.Users)
	assert.Equal(t, 1, calls)

	mr.FastForward(AnalyticsTTL + time.Second)
	assert.False(t, mr.Exists(AnalyticsKey))
}

func TestCacheAside_FetchErrorIsNotCached(t *testing.T) {
	mr, c := newTestCache(t)
	boom := errors.New("db down")

	var dest snapshot
	err := c.CacheAside(context.Background(), "analytics", AnalyticsKey, &dest, AnalyticsTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(AnalyticsKey))
}

func TestInvalidate(t *testing.T) {
	mr, c := newTestCache(t)
	require.NoError(t, mr.Set(AnalyticsKey, "{}"))
	require.NoError(t, mr.Set(UserStatusKey(9), `"BANNED"`))

	c.Invalidate(context.Background(), ModerationKeys(9)...)
	assert.False(t, mr.Exists(AnalyticsKey))
	assert.False(t, mr.Exists(UserStatusKey(9)))
}

func TestNilCacheIsAlwaysMiss(t *testing.T) {
	var c *Cache
	found, err := c.GetJSON(context.Background(), "k", &snapshot{})
	require.NoError(t, err)
	assert.False(t, found)

	nilClient := New((*redis.Client)(nil))
	assert.NoError(t, nilClient.SetJSON(context.Background(), "k", 1, time.Second))
	assert.NotPanics(t, func() { nilClient.Invalidate(context.Background(), "k") })
}
