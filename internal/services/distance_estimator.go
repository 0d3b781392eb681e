package services

import (
	"fmt"
	"math"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// HaversineEstimator implements DistanceEstimator using great-circle distance.
//
// Durations are derived from a configured average travel speed, so they scale
// linearly with distance. The estimator holds no mutable state and is safe for
// concurrent use.
type HaversineEstimator struct {
	averageSpeedKmh float64
}

func NewHaversineEstimator(averageSpeedKmh float64) (*HaversineEstimator, error) {
	if math.IsNaN(averageSpeedKmh) || math.IsInf(averageSpeedKmh, 0) || averageSpeedKmh <= 0 {
		return nil, &domain.ValidationError{
			Field:  "average_speed_kmh",
			Reason: fmt.Sprintf("must be positive, got %v", averageSpeedKmh),
		}
	}
	return &HaversineEstimator{averageSpeedKmh: averageSpeedKmh}, nil
}

func (h *HaversineEstimator) AverageSpeedKmh() float64 { return h.averageSpeedKmh }

// Estimate returns the great-circle distance in kilometers between two points
// and the travel time at the configured average speed.
func (h *HaversineEstimator) Estimate(from, to domain.Coordinates) (ports.DistanceResult, error) {
	if err := from.Validate(); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("estimate distance: from: %w", err)
	}
	if err := to.Validate(); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("estimate distance: to: %w", err)
	}

	if from == to {
		return ports.DistanceResult{}, nil
	}

	meters := geo.DistanceHaversine(orb.Point{from.Lon, from.Lat}, orb.Point{to.Lon, to.Lat})
	km := meters / 1000

	return ports.DistanceResult{
		DistanceKm:      km,
		DurationSeconds: km / h.averageSpeedKmh * 3600,
	}, nil
}
