package cache

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
)

type memoryEntry struct {
	route     *domain.RouteResult
	expiresAt time.Time
}

// MemoryRouteCache is an in-process RouteCache used when Redis is not configured.
type MemoryRouteCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRouteCache() *MemoryRouteCache {
	return &MemoryRouteCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryRouteCache) Get(_ context.Context, key string) (*domain.RouteResult, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	return cloneRoute(e.route), true, nil
}

// cloneRoute copies the parts of a route a caller could mutate so cache
// hits never share state.
func cloneRoute(r *domain.RouteResult) *domain.RouteResult {
	cp := *r
	cp.Stops = slices.Clone(r.Stops)
	if r.Origin != nil {
		o := *r.Origin
		cp.Origin = &o
	}
	return &cp
}

// Set stores route; a non-positive ttl never expires.
func (c *MemoryRouteCache) Set(_ context.Context, key string, route *domain.RouteResult, ttl time.Duration) error {
	if route == nil {
		return errors.New("route cache: route must be non-nil")
	}

	e := memoryEntry{route: cloneRoute(route)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	return nil
}
