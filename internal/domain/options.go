package domain

import (
	"fmt"
	"math"
)

const (
	DefaultAverageSpeedKmh   = 30.0
	DefaultIterationsPerStop = 50
	MinIterationCap          = 100
	DefaultDistanceEpsilon   = 1e-9
)

// OptimizerOptions tunes a single optimization call. Zero values select defaults.
type OptimizerOptions struct {
	// AverageSpeedKmh converts distance into an estimated travel duration.
	AverageSpeedKmh float64 `json:"average_speed_kmh" yaml:"average_speed_kmh"`
	// MaxIterations caps accepted 2-opt moves. Zero means
	// DefaultIterationsPerStop per stop, never below MinIterationCap.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// Epsilon is the relative tolerance for distance comparisons.
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
}

// Validate rejects negative or non-finite settings. Zero values are allowed
// and replaced by WithDefaults.
func (o OptimizerOptions) Validate() error {
	if math.IsNaN(o.AverageSpeedKmh) || math.IsInf(o.AverageSpeedKmh, 0) || o.AverageSpeedKmh < 0 {
		return &ValidationError{Field: "average_speed_kmh", Reason: fmt.Sprintf("must be positive, got %v", o.AverageSpeedKmh)}
	}
	if o.MaxIterations < 0 {
		return &ValidationError{Field: "max_iterations", Reason: fmt.Sprintf("must not be negative, got %d", o.MaxIterations)}
	}
	if math.IsNaN(o.Epsilon) || math.IsInf(o.Epsilon, 0) || o.Epsilon < 0 {
		return &ValidationError{Field: "epsilon", Reason: fmt.Sprintf("must not be negative, got %v", o.Epsilon)}
	}
	return nil
}

// WithDefaults fills zero fields. stopCount sizes the iteration cap.
func (o OptimizerOptions) WithDefaults(stopCount int) OptimizerOptions {
	if o.AverageSpeedKmh == 0 {
		o.AverageSpeedKmh = DefaultAverageSpeedKmh
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = max(DefaultIterationsPerStop*stopCount, MinIterationCap)
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultDistanceEpsilon
	}
	return o
}
