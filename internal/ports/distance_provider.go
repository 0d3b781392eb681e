package ports

import "github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"

// Distance and estimated travel duration between two coordinates.
type DistanceResult struct {
	DistanceKm      float64
	DurationSeconds float64
}

// Contract for computing a symmetric, non-negative distance between two points.
// Implementations are pure: no I/O and no shared mutable state.
type DistanceEstimator interface {
	// Return distance and estimated duration between two coordinates.
	// Invalid coordinates fail with *domain.ValidationError.
	Estimate(from, to domain.Coordinates) (DistanceResult, error)
}
