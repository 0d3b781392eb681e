package services

import (
	"testing"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
	"github.com/stretchr/testify/require"
)

// tableEstimator returns fixed distances keyed by unordered stop coordinates.
// Points are identified by Lat, which tests use as a node label.
type tableEstimator struct {
	km    map[[2]float64]float64
	calls int
}

func newTableEstimator(pairs map[[2]float64]float64) *tableEstimator {
	km := make(map[[2]float64]float64, len(pairs)*2)
	for k, v := range pairs {
		km[k] = v
		km[[2]float64{k[1], k[0]}] = v
	}
	return &tableEstimator{km: km}
}

func (e *tableEstimator) Estimate(from, to domain.Coordinates) (ports.DistanceResult, error) {
	e.calls++
	if from == to {
		return ports.DistanceResult{}, nil
	}
	d := e.km[[2]float64{from.Lat, to.Lat}]
	return ports.DistanceResult{DistanceKm: d, DurationSeconds: d * 60}, nil
}

func stopAt(id string, lat, lon float64) domain.Stop {
	return domain.Stop{ID: id, Label: "stop " + id, Location: domain.Coordinates{Lat: lat, Lon: lon}}
}

func mustMatrix(t *testing.T, est ports.DistanceEstimator, origin *domain.Coordinates, stops []domain.Stop) *legMatrix {
	t.Helper()
	m, err := buildLegMatrix(est, origin, stops)
	require.NoError(t, err)
	return m
}
