package ports

import (
	"context"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
)

// Optional cache of route results keyed by an input fingerprint.
type RouteCache interface {
	// Return the cached result; ok is false on a miss.
	Get(ctx context.Context, key string) (*domain.RouteResult, bool, error)
	Set(ctx context.Context, key string, route *domain.RouteResult, ttl time.Duration) error
}
