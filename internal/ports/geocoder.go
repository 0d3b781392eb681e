package ports

import (
	"context"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
)

// Contract for resolving address strings to coordinates.
type Geocoder interface {
	// Return coordinates keyed by the normalized address.
	Geocode(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
}

// Persistent address -> coordinate cache used by geocoders.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
