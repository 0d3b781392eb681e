package services

import (
	"math"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
)

// assembleRoute numbers the stops of path in visiting order and totals legs
// from the matrix. The origin node, when present, contributes its outgoing
// leg but never appears as a stop.
func assembleRoute(
	m *legMatrix,
	stops []domain.Stop,
	origin *domain.Coordinates,
	path []int,
	baseline float64,
	iterations int,
	exhausted bool,
) *domain.RouteResult {
	routeStops := make([]domain.RouteStop, 0, len(stops))

	prev := -1
	cumDistance := 0.0
	cumDuration := 0.0

	for _, node := range path {
		idx := m.stopIndex(node)
		if idx < 0 {
			prev = node
			continue
		}

		var legDistance, legDuration float64
		if prev >= 0 {
			leg := m.legs[prev][node]
			legDistance = leg.DistanceKm
			legDuration = leg.DurationSeconds
		}
		cumDistance += legDistance
		cumDuration += legDuration

		routeStops = append(routeStops, domain.RouteStop{
			Sequence:                  len(routeStops) + 1,
			Stop:                      stops[idx],
			LegDistanceKm:             legDistance,
			LegDurationSeconds:        legDuration,
			CumulativeDistanceKm:      cumDistance,
			CumulativeDurationSeconds: cumDuration,
		})
		prev = node
	}

	return &domain.RouteResult{
		Origin:               origin,
		Stops:                routeStops,
		TotalDistanceKm:      cumDistance,
		TotalDurationSeconds: cumDuration,
		Improvement:          computeImprovement(baseline, cumDistance, len(stops)),
		Iterations:           iterations,
		BudgetExceeded:       exhausted,
	}
}

// computeImprovement reports distance saved against the baseline with a zero
// floor. The percentage is zero for fewer than two stops or a zero baseline.
func computeImprovement(baseline, final float64, stopCount int) domain.Improvement {
	saved := math.Max(0, baseline-final)

	pct := 0.0
	if stopCount >= 2 && baseline > 0 {
		pct = saved * 100 / baseline
	}

	return domain.Improvement{
		BaselineDistanceKm: baseline,
		DistanceSavedKm:    saved,
		PercentageImproved: pct,
	}
}
