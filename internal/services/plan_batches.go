package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/obs"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
	"golang.org/x/sync/errgroup"
)

// maxParallelBatches bounds concurrent batch optimizations.
const maxParallelBatches = 5

type PlanBatchRequest struct {
	BatchID string
	Options domain.OptimizerOptions
	// Force re-optimizes a batch that already has a stored route.
	Force bool
	// Timeout is a wall-clock budget for the improvement phase. Zero disables it.
	Timeout time.Duration
}

// BatchRouteOutcome is the per-batch result of PlanBatchRoutes.
type BatchRouteOutcome struct {
	BatchID string
	Route   *domain.RouteResult
	Err     error
}

// PlanBatchRoute optimizes a stored delivery batch and persists the route.
//
// A batch is optimized once: when it already has a route and Force is not set,
// the stored route is returned without recomputation. A budget-exceeded route
// is still stored since it is a complete, valid tour.
func PlanBatchRoute(
	ctx context.Context,
	req PlanBatchRequest,
	repo ports.BatchRepository,
	estimator ports.DistanceEstimator,
) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, "services.PlanBatchRoute")(&err)

	batchID := strings.TrimSpace(req.BatchID)
	if batchID == "" {
		return nil, errors.New("plan batch route: batch id must be non-empty")
	}

	batch, err := repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("plan batch route: get batch %q: %w", batchID, err)
	}

	if batch.Route != nil && !req.Force {
		return batch.Route, nil
	}

	optCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		optCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	route, err := Optimize(optCtx, OptimizeRequest{
		Stops:     batch.Stops,
		Origin:    batch.Origin,
		Options:   req.Options,
		Estimator: estimator,
	})
	if err != nil {
		return nil, fmt.Errorf("plan batch route: batch %q: %w", batchID, err)
	}

	if route.BudgetExceeded {
		log.Printf("batch_id=%s op=optimize budget_exceeded=true iterations=%d stops=%d", batchID, route.Iterations, len(route.Stops))
	}

	if err := repo.SaveRoute(ctx, batchID, route); err != nil {
		return nil, fmt.Errorf("plan batch route: save route for batch %q: %w", batchID, err)
	}

	return route, nil
}

// PlanBatchRoutes plans several batches (one per driver) concurrently.
//
// Each batch is independent, so a failure in one does not cancel the others;
// errors are reported per batch. Outcomes keep the order of batchIDs.
func PlanBatchRoutes(
	ctx context.Context,
	batchIDs []string,
	template PlanBatchRequest,
	repo ports.BatchRepository,
	estimator ports.DistanceEstimator,
) ([]BatchRouteOutcome, error) {
	seen := make(map[string]struct{}, len(batchIDs))
	for _, id := range batchIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, &domain.ValidationError{Field: "batch_ids", Reason: "batch id must be non-empty"}
		}
		if _, ok := seen[id]; ok {
			return nil, &domain.ValidationError{Field: "batch_ids", Reason: fmt.Sprintf("duplicate batch id %q", id)}
		}
		seen[id] = struct{}{}
	}

	outcomes := make([]BatchRouteOutcome, len(batchIDs))

	var g errgroup.Group
	g.SetLimit(maxParallelBatches)

	for i, id := range batchIDs {
		req := template
		req.BatchID = strings.TrimSpace(id)

		g.Go(func() error {
			route, err := PlanBatchRoute(ctx, req, repo, estimator)
			outcomes[i] = BatchRouteOutcome{BatchID: req.BatchID, Route: route, Err: err}
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, fmt.Errorf("plan batch routes: %w", err)
	}

	return outcomes, nil
}
