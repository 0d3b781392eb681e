package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLBatchRepository {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(conn))
	// Schema creation is idempotent.
	require.NoError(t, InitSchema(conn))

	return NewSQLBatchRepository(conn, db.DialectSQLite)
}

func testBatch(id string, date time.Time) *domain.DeliveryBatch {
	return &domain.DeliveryBatch{
		BatchID:      id,
		DriverID:     "DRV-014",
		BranchID:     "KILIMANI",
		DeliveryDate: date,
		Origin:       &domain.Coordinates{Lat: -1.2903, Lon: 36.7822},
		Stops: []domain.Stop{
			{ID: "S2", Label: "Lavington Mall", OrderRef: "ORD-2", Location: domain.Coordinates{Lat: -1.2780, Lon: 36.7690}},
			{ID: "S1", Label: "Yaya Centre", OrderRef: "ORD-1", Location: domain.Coordinates{Lat: -1.2925, Lon: 36.7874}},
			{ID: "S3", Label: "Junction Mall", Location: domain.Coordinates{Lat: -1.2985, Lon: 36.7626}},
		},
	}
}

func TestSQLBatchRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateBatch(ctx, testBatch("B1", date)))

	got, err := repo.GetBatch(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "DRV-014", got.DriverID)
	assert.True(t, date.Equal(got.DeliveryDate))
	require.NotNil(t, got.Origin)
	assert.InDelta(t, -1.2903, got.Origin.Lat, 1e-12)
	assert.Nil(t, got.Route)

	require.Len(t, got.Stops, 3)
	assert.Equal(t, "S2", got.Stops[0].ID, "stops keep caller-supplied order")
	assert.Equal(t, "S1", got.Stops[1].ID)
	assert.Equal(t, "ORD-1", got.Stops[1].OrderRef)
}

func TestSQLBatchRepositoryWithoutOrigin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := testBatch("B1", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	b.Origin = nil
	require.NoError(t, repo.CreateBatch(ctx, b))

	got, err := repo.GetBatch(ctx, "B1")
	require.NoError(t, err)
	assert.Nil(t, got.Origin)
}

func TestSQLBatchRepositoryRoutes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateBatch(ctx, testBatch("B1", date)))

	_, err := repo.GetRoute(ctx, "B1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	route := &domain.RouteResult{
		Stops: []domain.RouteStop{
			{Sequence: 1, Stop: domain.Stop{ID: "S1"}, LegDistanceKm: 1.5, CumulativeDistanceKm: 1.5},
			{Sequence: 2, Stop: domain.Stop{ID: "S2"}, LegDistanceKm: 2, CumulativeDistanceKm: 3.5},
		},
		TotalDistanceKm: 3.5,
		Improvement:     domain.Improvement{BaselineDistanceKm: 5, DistanceSavedKm: 1.5, PercentageImproved: 30},
		Iterations:      2,
	}
	require.NoError(t, repo.SaveRoute(ctx, "B1", route))

	stored, err := repo.GetRoute(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, route, stored)

	batch, err := repo.GetBatch(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, route, batch.Route)

	err = repo.SaveRoute(ctx, "missing", route)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetRoute(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Re-creating a batch replaces its stops and clears the stored route.
	require.NoError(t, repo.CreateBatch(ctx, testBatch("B1", date)))
	_, err = repo.GetRoute(ctx, "B1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLBatchRepositoryGetBatchNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBatch(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeedFromJSON(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := `[
	  {"batch_id": "B2", "driver_id": "D2", "branch_id": "CBD", "delivery_date": "2026-10-20",
	   "stops": [{"id": "S1", "label": "Ngara", "lat": -1.272, "lon": 36.827}]},
	  {"batch_id": "B1", "driver_id": "D1", "branch_id": "KIL", "delivery_date": "2026-10-19",
	   "origin": {"lat": -1.29, "lon": 36.78},
	   "stops": [{"id": "S1", "label": "Yaya", "order_ref": "ORD-1", "lat": -1.2925, "lon": 36.7874},
	             {"id": "S2", "label": "Prestige", "lat": -1.3, "lon": 36.787}]}
	]`
	path := filepath.Join(t.TempDir(), "batches.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	require.NoError(t, SeedFromJSON(ctx, repo, path))

	ids, err := repo.ListBatchIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1", "B2"}, ids)

	b1, err := repo.GetBatch(ctx, "B1")
	require.NoError(t, err)
	assert.Len(t, b1.Stops, 2)
	assert.NotNil(t, b1.Origin)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"batch_id": "X", "delivery_date": "19/10/2026"}]`), 0o600))
	assert.Error(t, SeedFromJSON(ctx, repo, bad))
}
