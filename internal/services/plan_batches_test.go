package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatchRepo struct {
	mu      sync.Mutex
	batches map[string]*domain.DeliveryBatch
	saves   map[string]int
	saveErr error
}

func newFakeBatchRepo(batches ...*domain.DeliveryBatch) *fakeBatchRepo {
	r := &fakeBatchRepo{batches: make(map[string]*domain.DeliveryBatch), saves: make(map[string]int)}
	for _, b := range batches {
		r.batches[b.BatchID] = b
	}
	return r
}

func (r *fakeBatchRepo) ListBatchIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.batches))
	for id := range r.batches {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeBatchRepo) GetBatch(_ context.Context, id string) (*domain.DeliveryBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBatchRepo) SaveRoute(_ context.Context, id string, route *domain.RouteResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	b, ok := r.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Route = route
	r.saves[id]++
	return nil
}

func (r *fakeBatchRepo) GetRoute(_ context.Context, id string) (*domain.RouteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok || b.Route == nil {
		return nil, domain.ErrNotFound
	}
	return b.Route, nil
}

func sampleBatch(id string) *domain.DeliveryBatch {
	return &domain.DeliveryBatch{
		BatchID:      id,
		DriverID:     "DRV-" + id,
		BranchID:     "KILIMANI",
		DeliveryDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Origin:       &domain.Coordinates{Lat: -1.2903, Lon: 36.7822},
		Stops: []domain.Stop{
			stopAt("S1", -1.2925, 36.7874),
			stopAt("S2", -1.2780, 36.7690),
			stopAt("S3", -1.2985, 36.7626),
			stopAt("S4", -1.3000, 36.7870),
		},
	}
}

func TestPlanBatchRouteOptimizesOnce(t *testing.T) {
	repo := newFakeBatchRepo(sampleBatch("B1"))
	est, err := NewHaversineEstimator(30)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := PlanBatchRoute(ctx, PlanBatchRequest{BatchID: "B1"}, repo, est)
	require.NoError(t, err)
	assert.Len(t, first.Stops, 4)
	assert.Equal(t, 1, repo.saves["B1"])

	second, err := PlanBatchRoute(ctx, PlanBatchRequest{BatchID: "B1"}, repo, est)
	require.NoError(t, err)
	assert.Same(t, first, second, "stored route is returned without recomputation")
	assert.Equal(t, 1, repo.saves["B1"])

	_, err = PlanBatchRoute(ctx, PlanBatchRequest{BatchID: "B1", Force: true}, repo, est)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.saves["B1"])
}

func TestPlanBatchRouteErrors(t *testing.T) {
	est, err := NewHaversineEstimator(30)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = PlanBatchRoute(ctx, PlanBatchRequest{BatchID: "missing"}, newFakeBatchRepo(), est)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = PlanBatchRoute(ctx, PlanBatchRequest{BatchID: "  "}, newFakeBatchRepo(), est)
	assert.Error(t, err)

	bad := sampleBatch("B2")
	bad.Stops[1].Location.Lat = 95
	_, err = PlanBatchRoute(ctx, PlanBatchRequest{BatchID: "B2"}, newFakeBatchRepo(bad), est)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "S2", ve.StopID)

	failing := newFakeBatchRepo(sampleBatch("B3"))
	failing.saveErr = errors.New("disk full")
	_, err = PlanBatchRoute(ctx, PlanBatchRequest{BatchID: "B3"}, failing, est)
	assert.ErrorContains(t, err, "disk full")
}

func TestPlanBatchRoutesKeepsOrderAndIsolatesFailures(t *testing.T) {
	ids := make([]string, 0, 12)
	batches := make([]*domain.DeliveryBatch, 0, 12)
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("B%02d", i)
		ids = append(ids, id)
		batches = append(batches, sampleBatch(id))
	}
	repo := newFakeBatchRepo(batches...)
	ids = append(ids, "missing")

	est, err := NewHaversineEstimator(30)
	require.NoError(t, err)

	outcomes, err := PlanBatchRoutes(context.Background(), ids, PlanBatchRequest{Timeout: time.Second}, repo, est)
	require.NoError(t, err)
	require.Len(t, outcomes, len(ids))

	for i, o := range outcomes {
		assert.Equal(t, ids[i], o.BatchID)
		if o.BatchID == "missing" {
			assert.ErrorIs(t, o.Err, domain.ErrNotFound)
			assert.Nil(t, o.Route)
			continue
		}
		require.NoError(t, o.Err)
		assert.Len(t, o.Route.Stops, 4)
	}
}

func TestPlanBatchRoutesRejectsBadIDs(t *testing.T) {
	est, err := NewHaversineEstimator(30)
	require.NoError(t, err)

	_, err = PlanBatchRoutes(context.Background(), []string{"B1", "B1"}, PlanBatchRequest{}, newFakeBatchRepo(), est)
	assert.True(t, domain.IsValidationError(err))

	_, err = PlanBatchRoutes(context.Background(), []string{""}, PlanBatchRequest{}, newFakeBatchRepo(), est)
	assert.True(t, domain.IsValidationError(err))
}
