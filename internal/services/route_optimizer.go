package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
)

// OptimizeRequest is the input to a single route optimization.
//
// Stops order is only the naive baseline, not a hint. Estimator is optional;
// when nil a HaversineEstimator at Options.AverageSpeedKmh is used. When set,
// its own durations are reported and AverageSpeedKmh is only validated.
type OptimizeRequest struct {
	Stops     []domain.Stop
	Origin    *domain.Coordinates
	Options   domain.OptimizerOptions
	Estimator ports.DistanceEstimator
}

// Optimize sequences delivery stops to minimize total travel distance.
//
// The tour is built greedily with nearest neighbor and refined with 2-opt.
// Because a local optimum grown from nearest neighbor can still be longer than
// the caller's order, the input order is refined as a second candidate and the
// shorter of the two is kept (ties keep nearest neighbor). The result is
// therefore never longer than the baseline.
//
// Optimize is pure and synchronous. A done ctx acts as a soft budget: the best
// tour found so far is returned with BudgetExceeded set. Any invalid input
// aborts with *domain.ValidationError before work starts.
func Optimize(ctx context.Context, req OptimizeRequest) (*domain.RouteResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	opts := req.Options.WithDefaults(len(req.Stops))

	estimator := req.Estimator
	if estimator == nil {
		h, err := NewHaversineEstimator(opts.AverageSpeedKmh)
		if err != nil {
			return nil, fmt.Errorf("optimize route: %w", err)
		}
		estimator = h
	}

	stops := slices.Clone(req.Stops)
	var origin *domain.Coordinates
	if req.Origin != nil {
		o := *req.Origin
		origin = &o
	}

	if len(stops) == 0 {
		return &domain.RouteResult{
			Origin: origin,
			Stops:  []domain.RouteStop{},
		}, nil
	}

	m, err := buildLegMatrix(estimator, origin, stops)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	baseline := baselineDistance(m, len(stops))

	greedy := twoOpt(ctx, m, nearestNeighborTour(m, len(stops), opts.Epsilon), opts.MaxIterations, opts.Epsilon)
	seeded := twoOpt(ctx, m, inputOrderPath(m, len(stops)), opts.MaxIterations, opts.Epsilon)

	best := greedy
	if seeded.total < greedy.total-tolerance(opts.Epsilon, greedy.total) {
		best = seeded
	}

	return assembleRoute(
		m,
		stops,
		origin,
		best.path,
		baseline,
		greedy.accepted+seeded.accepted,
		greedy.exhausted || seeded.exhausted,
	), nil
}

// validateRequest checks the whole input up front so no partial route is ever built.
func validateRequest(req OptimizeRequest) error {
	if err := req.Options.Validate(); err != nil {
		return err
	}

	if req.Origin != nil {
		if err := req.Origin.Validate(); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				ve.Field = "origin." + ve.Field
			}
			return err
		}
	}

	seen := make(map[string]struct{}, len(req.Stops))
	for i, s := range req.Stops {
		if strings.TrimSpace(s.ID) == "" {
			return &domain.ValidationError{
				Field:  "id",
				Reason: fmt.Sprintf("stop at index %d has an empty id", i),
			}
		}

		if _, ok := seen[s.ID]; ok {
			return &domain.ValidationError{StopID: s.ID, Field: "id", Reason: "duplicate stop id"}
		}
		seen[s.ID] = struct{}{}

		if err := s.Location.Validate(); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				ve.StopID = s.ID
			}
			return err
		}
	}

	return nil
}
