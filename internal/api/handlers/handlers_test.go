package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/adapters/cache"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/adapters/repositories"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/api/dto"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/platform/db"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	coords map[string]domain.Coordinates
	err    error
}

func (g *stubGeocoder) Geocode(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		if c, ok := g.coords[a]; ok {
			out[a] = c
		}
	}
	return out, nil
}

func newRouteHandler(t *testing.T) *RouteHandler {
	t.Helper()
	est, err := services.NewHaversineEstimator(30)
	require.NoError(t, err)
	return &RouteHandler{
		Estimator: est,
		Cache:     cache.NewMemoryRouteCache(),
		CacheTTL:  time.Minute,
		Options:   domain.OptimizerOptions{AverageSpeedKmh: 30},
	}
}

func postJSON(h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestOptimizeRoute(t *testing.T) {
	h := newRouteHandler(t)

	body := `{
		"origin": {"lat": -1.2903, "lon": 36.7822},
		"stops": [
			{"id": "S1", "label": "Yaya Centre", "lat": -1.2925, "lon": 36.7874},
			{"id": "S2", "label": "Lavington Mall", "lat": -1.2780, "lon": 36.7690},
			{"id": "S3", "label": "Junction Mall", "lat": -1.2985, "lon": 36.7626}
		]
	}`
	rec := postJSON(h.Optimize, "/routes/optimize", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Stops, 3)
	assert.Equal(t, 1, res.Stops[0].Sequence)
	assert.Positive(t, res.TotalDistanceKm)
	assert.LessOrEqual(t, res.TotalDistanceKm, res.Improvement.BaselineDistanceKm+1e-9)
	require.NotNil(t, res.Origin)
}

func TestOptimizeRouteValidation(t *testing.T) {
	h := newRouteHandler(t)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "bad json", body: `{"stops": [`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"stopz": []}`, status: http.StatusBadRequest},
		{
			name:   "latitude out of range",
			body:   `{"stops": [{"id": "S9", "lat": 95, "lon": 36.8}]}`,
			status: http.StatusUnprocessableEntity,
			want:   "S9",
		},
		{
			name:   "duplicate id",
			body:   `{"stops": [{"id": "S1", "lat": -1.3, "lon": 36.8}, {"id": "S1", "lat": -1.2, "lon": 36.8}]}`,
			status: http.StatusUnprocessableEntity,
			want:   "duplicate",
		},
		{
			name:   "missing location",
			body:   `{"stops": [{"id": "S4"}]}`,
			status: http.StatusUnprocessableEntity,
			want:   "S4",
		},
		{
			name:   "address without geocoder",
			body:   `{"stops": [{"id": "S5", "address": "Yaya Centre"}]}`,
			status: http.StatusUnprocessableEntity,
			want:   "S5",
		},
		{
			name:   "zero speed",
			body:   `{"stops": [], "average_speed_kmh": 0}`,
			status: http.StatusUnprocessableEntity,
			want:   "average_speed_kmh",
		},
		{
			name:   "negative iterations",
			body:   `{"stops": [], "max_iterations": -1}`,
			status: http.StatusUnprocessableEntity,
			want:   "max_iterations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h.Optimize, "/routes/optimize", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			if tt.want != "" {
				assert.Contains(t, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestOptimizeRouteGeocodesAddresses(t *testing.T) {
	h := newRouteHandler(t)
	h.Geocoder = &stubGeocoder{coords: map[string]domain.Coordinates{
		"Sarit Centre, Westlands": {Lat: -1.2609, Lon: 36.8027},
	}}

	body := `{"stops": [
		{"id": "S1", "lat": -1.2649, "lon": 36.8034},
		{"id": "S2", "address": "Sarit   Centre, Westlands"}
	]}`
	rec := postJSON(h.Optimize, "/routes/optimize", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Stops, 2)
	for _, s := range res.Stops {
		if s.ID == "S2" {
			assert.InDelta(t, -1.2609, s.Lat, 1e-12)
		}
	}

	unresolved := postJSON(h.Optimize, "/routes/optimize", `{"stops": [{"id": "S3", "address": "Unknown Rd"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, unresolved.Code)
	assert.Contains(t, unresolved.Body.String(), "S3")

	h.Geocoder = &stubGeocoder{err: errors.New("ors down")}
	failed := postJSON(h.Optimize, "/routes/optimize", `{"stops": [{"id": "S3", "address": "Unknown Rd"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, failed.Code)
}

func TestOptimizeRouteMethodNotAllowed(t *testing.T) {
	h := newRouteHandler(t)

	rec := httptest.NewRecorder()
	h.Optimize(rec, httptest.NewRequest(http.MethodGet, "/routes/optimize", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func newBatchHandler(t *testing.T) *BatchHandler {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))

	repo := repositories.NewSQLBatchRepository(conn, db.DialectSQLite)
	require.NoError(t, repo.CreateBatch(context.Background(), &domain.DeliveryBatch{
		BatchID:      "B1",
		DriverID:     "DRV-022",
		BranchID:     "WESTLANDS",
		DeliveryDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Origin:       &domain.Coordinates{Lat: -1.2655, Lon: 36.8040},
		Stops: []domain.Stop{
			{ID: "S1", Label: "Village Market", Location: domain.Coordinates{Lat: -1.2297, Lon: 36.8045}},
			{ID: "S2", Label: "Sarit Centre", Location: domain.Coordinates{Lat: -1.2609, Lon: 36.8027}},
			{ID: "S3", Label: "Two Rivers Mall", Location: domain.Coordinates{Lat: -1.2111, Lon: 36.7955}},
		},
	}))

	est, err := services.NewHaversineEstimator(30)
	require.NoError(t, err)

	return &BatchHandler{Repo: repo, Estimator: est, Timeout: time.Second}
}

func batchRouteRequest(method, id, query string) *http.Request {
	req := httptest.NewRequest(method, "/batches/"+id+"/route"+query, nil)
	req.SetPathValue("id", id)
	return req
}

func TestBatchRouteLifecycle(t *testing.T) {
	h := newBatchHandler(t)

	rec := httptest.NewRecorder()
	h.Route(rec, batchRouteRequest(http.MethodGet, "B1", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Route(rec, batchRouteRequest(http.MethodPost, "B1", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var planned dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &planned))
	assert.Equal(t, "B1", planned.BatchID)
	assert.Len(t, planned.Stops, 3)

	rec = httptest.NewRecorder()
	h.Route(rec, batchRouteRequest(http.MethodGet, "B1", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, planned, stored)

	rec = httptest.NewRecorder()
	h.Route(rec, batchRouteRequest(http.MethodPost, "B1", "?force=true"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Route(rec, batchRouteRequest(http.MethodPost, "B1", "?force=maybe"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Route(rec, batchRouteRequest(http.MethodPost, "missing", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Route(rec, batchRouteRequest(http.MethodDelete, "B1", ""))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBatchListAndPlanMany(t *testing.T) {
	h := newBatchHandler(t)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/batches", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list dto.ListBatchesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"B1"}, list.BatchIDs)

	rec = postJSON(h.PlanMany, "/batches/routes", `{"batch_ids": ["B1", "missing"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.PlanBatchesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 2)
	assert.Equal(t, "B1", res.Results[0].BatchID)
	require.NotNil(t, res.Results[0].Route)
	assert.Empty(t, res.Results[0].Error)
	assert.Nil(t, res.Results[1].Route)
	assert.Contains(t, res.Results[1].Error, "not found")

	assert.Equal(t, http.StatusBadRequest, postJSON(h.PlanMany, "/batches/routes", `{"batch_ids": []}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, postJSON(h.PlanMany, "/batches/routes", `{"batch_ids": ["B1", "B1"]}`).Code)
}
