package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/obs"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
)

const DefaultRouteCacheTTL = 24 * time.Hour

type fingerprintInput struct {
	Origin  *domain.Coordinates     `json:"origin"`
	Stops   []domain.Stop           `json:"stops"`
	Options domain.OptimizerOptions `json:"options"`
}

// RouteFingerprint derives a cache key from everything that determines the
// result: origin, stops in input order and effective options.
func RouteFingerprint(req OptimizeRequest) (string, error) {
	b, err := json.Marshal(fingerprintInput{
		Origin:  req.Origin,
		Stops:   req.Stops,
		Options: req.Options.WithDefaults(len(req.Stops)),
	})
	if err != nil {
		return "", fmt.Errorf("route fingerprint: marshal input: %w", err)
	}

	sum := sha256.Sum256(b)
	return "route:v1:" + hex.EncodeToString(sum[:]), nil
}

// OptimizeCached wraps Optimize with a result cache.
//
// Cache read/write failures are logged and never fail the request. Results
// that stopped on their budget are not cached so a later call can do better.
func OptimizeCached(
	ctx context.Context,
	req OptimizeRequest,
	cache ports.RouteCache,
	ttl time.Duration,
) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, "services.OptimizeCached")(&err)

	if cache == nil {
		return Optimize(ctx, req)
	}

	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultRouteCacheTTL
	}

	key, err := RouteFingerprint(req)
	if err != nil {
		return nil, fmt.Errorf("optimize cached: %w", err)
	}

	cached, ok, err := cache.Get(ctx, key)
	if err != nil {
		log.Printf("route cache read failed: key=%s err=%v", key, err)
	} else if ok {
		return cached, nil
	}

	route, err := Optimize(ctx, req)
	if err != nil {
		return nil, err
	}

	if !route.BudgetExceeded {
		if err := cache.Set(ctx, key, route, ttl); err != nil {
			log.Printf("route cache write failed: key=%s err=%v", key, err)
		}
	}

	return route, nil
}
