package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/obs"
	"github.com/redis/go-redis/v9"
)

// RedisRouteCache stores route results as JSON in Redis with a TTL.
type RedisRouteCache struct {
	client *redis.Client
	prefix string
}

func NewRedisRouteCache(client *redis.Client) *RedisRouteCache {
	return &RedisRouteCache{client: client, prefix: "dispatch:"}
}

// Fetch a cached route. A missing key is a miss, not an error.
func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ *domain.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if c.client == nil {
		return nil, false, errors.New("route cache: client is nil")
	}

	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	var route domain.RouteResult
	if err := json.Unmarshal(b, &route); err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: decode: %w", key, err)
	}

	return &route, true, nil
}

// Store a route under key for ttl.
func (c *RedisRouteCache) Set(ctx context.Context, key string, route *domain.RouteResult, ttl time.Duration) error {
	if c.client == nil {
		return errors.New("route cache: client is nil")
	}
	if route == nil {
		return errors.New("route cache: route must be non-nil")
	}

	b, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("set route cache key=%q: encode: %w", key, err)
	}

	if err := c.client.Set(ctx, c.prefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("set route cache key=%q: %w", key, err)
	}

	return nil
}
