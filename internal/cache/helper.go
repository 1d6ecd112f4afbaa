package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/madaghaxx/Noctua/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Cache wraps an optional Redis client. A nil client turns every call into a miss.
type Cache struct {
	rdb *redis.Client
}

// New returns a Cache backed by rdb, which may be nil.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// CacheAside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. Redis read errors degrade to a miss.
func (c *Cache) CacheAside(ctx context.Context, family, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err == nil && found {
		observability.CacheResults.WithLabelValues(family, "hit").Inc()
		return nil
	}
	observability.CacheResults.WithLabelValues(family, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	// Best-effort; a failed write only costs the next read a miss.
	_ = c.SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	c.rdb.Del(ctx, keys...)
}
