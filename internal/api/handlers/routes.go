package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/adapters/geocoding"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/api/dto"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/services"
)

// RouteHandler sequences ad-hoc stop lists submitted by the dispatch UI.
type RouteHandler struct {
	Estimator ports.DistanceEstimator
	Cache     ports.RouteCache
	CacheTTL  time.Duration
	Geocoder  ports.Geocoder
	Options   domain.OptimizerOptions
}

// Optimize validates the stop list, resolves any address-only stops and
// returns the optimized route. Invalid input yields 422 naming the stop.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	opts := h.Options
	if req.AverageSpeedKmh != nil {
		if *req.AverageSpeedKmh <= 0 {
			writeError(w, r, http.StatusUnprocessableEntity, "average_speed_kmh must be positive")
			return
		}
		opts.AverageSpeedKmh = *req.AverageSpeedKmh
	}
	if req.MaxIterations != nil {
		opts.MaxIterations = *req.MaxIterations
	}

	stops, err := h.resolveStops(r, req.Stops)
	if err != nil {
		writeServiceError(w, r, "resolve stops", err)
		return
	}

	svcReq := services.OptimizeRequest{
		Stops:   stops,
		Options: opts,
	}
	if req.Origin != nil {
		svcReq.Origin = &domain.Coordinates{Lat: req.Origin.Lat, Lon: req.Origin.Lon}
	}
	// The shared estimator runs at the configured speed; a per-request speed
	// falls back to a request-scoped haversine estimator.
	if req.AverageSpeedKmh == nil {
		svcReq.Estimator = h.Estimator
	}

	route, err := services.OptimizeCached(r.Context(), svcReq, h.Cache, h.CacheTTL)
	if err != nil {
		writeServiceError(w, r, "optimize route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse("", route))
}

// resolveStops converts request stops to domain stops, geocoding those that
// only carry an address. Errors name the first offending stop in input order.
func (h *RouteHandler) resolveStops(r *http.Request, in []dto.StopRequest) ([]domain.Stop, error) {
	stops := make([]domain.Stop, len(in))
	pending := make([]int, 0)
	addresses := make([]string, len(in))

	for i, s := range in {
		stops[i] = domain.Stop{ID: strings.TrimSpace(s.ID), Label: s.Label, OrderRef: s.OrderRef}

		switch {
		case s.Lat != nil && s.Lon != nil:
			stops[i].Location = domain.Coordinates{Lat: *s.Lat, Lon: *s.Lon}
		case strings.TrimSpace(s.Address) != "":
			addresses[i] = geocoding.Normalize(s.Address)
			pending = append(pending, i)
		default:
			return nil, &domain.ValidationError{StopID: stops[i].ID, Field: "location", Reason: "coordinates or address required"}
		}
	}

	if len(pending) == 0 {
		return stops, nil
	}

	if h.Geocoder == nil {
		return nil, &domain.ValidationError{StopID: stops[pending[0]].ID, Field: "address", Reason: "geocoding is not configured"}
	}

	lookup := make([]string, 0, len(pending))
	for _, i := range pending {
		lookup = append(lookup, addresses[i])
	}

	coords, err := h.Geocoder.Geocode(r.Context(), lookup)
	if err != nil {
		return nil, &domain.ValidationError{Field: "address", Reason: fmt.Sprintf("address resolution failed: %v", err)}
	}

	for _, i := range pending {
		c, ok := coords[addresses[i]]
		if !ok {
			return nil, &domain.ValidationError{StopID: stops[i].ID, Field: "address", Reason: fmt.Sprintf("address %q could not be resolved", addresses[i])}
		}
		stops[i].Location = c
	}

	return stops, nil
}
