package services

import (
	"fmt"
	"math"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
)

// legMatrix holds pairwise legs between route nodes.
// When an origin is set it is node 0 and stop i is node i+1; otherwise stop i is node i.
type legMatrix struct {
	legs      [][]ports.DistanceResult
	hasOrigin bool
}

// buildLegMatrix estimates every unordered pair once and mirrors it,
// relying on the estimator being symmetric.
func buildLegMatrix(
	estimator ports.DistanceEstimator,
	origin *domain.Coordinates,
	stops []domain.Stop,
) (*legMatrix, error) {
	points := make([]domain.Coordinates, 0, len(stops)+1)
	if origin != nil {
		points = append(points, *origin)
	}
	for _, s := range stops {
		points = append(points, s.Location)
	}

	n := len(points)
	legs := make([][]ports.DistanceResult, n)
	for i := range legs {
		legs[i] = make([]ports.DistanceResult, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, err := estimator.Estimate(points[i], points[j])
			if err != nil {
				return nil, fmt.Errorf("build leg matrix: estimate %d -> %d: %w", i, j, err)
			}
			if math.IsNaN(r.DistanceKm) || r.DistanceKm < 0 {
				return nil, fmt.Errorf("build leg matrix: estimator returned invalid distance %v for %d -> %d", r.DistanceKm, i, j)
			}
			legs[i][j] = r
			legs[j][i] = r
		}
	}

	return &legMatrix{legs: legs, hasOrigin: origin != nil}, nil
}

func (m *legMatrix) size() int { return len(m.legs) }

func (m *legMatrix) distance(a, b int) float64 { return m.legs[a][b].DistanceKm }

// stopNode maps a stop's input index to its node index.
func (m *legMatrix) stopNode(i int) int {
	if m.hasOrigin {
		return i + 1
	}
	return i
}

// stopIndex maps a node back to the stop's input index; the origin maps to -1.
func (m *legMatrix) stopIndex(node int) int {
	if m.hasOrigin {
		return node - 1
	}
	return node
}

// pathDistance sums consecutive legs along an open path (no return leg).
func (m *legMatrix) pathDistance(path []int) float64 {
	total := 0.0
	for k := 1; k < len(path); k++ {
		total += m.distance(path[k-1], path[k])
	}
	return total
}

// tolerance scales a relative epsilon to the magnitude being compared.
func tolerance(eps, ref float64) float64 {
	return eps * math.Max(1, math.Abs(ref))
}
