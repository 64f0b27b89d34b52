// Package cache is an optional Redis-backed result cache for the hybrid
// query engine, inert unless REDIS_URL is configured. Grounded on
// intelligencedev-manifold's redis_cache.go: a disabled-by-construction
// client (nil when no config), Get/Set wrapping json.Marshal over a
// redis.Client, TTL-bounded keys.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kogsector/kgfusion/model"
	"github.com/kogsector/kgfusion/query"
)

const keyPrefix = "kgfusion:search:"

// Cache wraps a Redis client for search-result caching. A nil *Cache is
// valid and makes every Get a miss and every Set a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New dials redisURL and returns a Cache, or (nil, nil) if redisURL is
// empty — callers should treat a nil Cache as "caching disabled" rather
// than an error.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Key derives a stable cache key from a search mode and request, so
// identical requests in the same mode share a cache entry.
func Key(mode string, req model.SearchRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return keyPrefix + mode + ":" + hex.EncodeToString(sum[:])
}

// Get returns a cached result and true on a hit; (zero, false) on a miss or
// when caching is disabled.
func (c *Cache) Get(ctx context.Context, key string) (query.Result, bool) {
	if c == nil {
		return query.Result{}, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return query.Result{}, false
	}
	var result query.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return query.Result{}, false
	}
	return result, true
}

// Set stores result under key with the cache's configured TTL. Errors are
// swallowed: a cache write failure must never fail the search request it
// backs.
func (c *Cache) Set(ctx context.Context, key string, result query.Result) {
	if c == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}
