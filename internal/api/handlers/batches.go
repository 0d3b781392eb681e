package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/api/dto"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/services"
)

// BatchHandler exposes route planning for stored delivery batches.
type BatchHandler struct {
	Repo      ports.BatchRepository
	Estimator ports.DistanceEstimator
	Options   domain.OptimizerOptions
	Timeout   time.Duration
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	ids, err := h.Repo.ListBatchIDs(r.Context())
	if err != nil {
		writeServiceError(w, r, "list batches", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListBatchesResponse{BatchIDs: ids})
}

// Route serves GET (stored route) and POST (plan, ?force=true to re-optimize)
// on /batches/{id}/route.
func (h *BatchHandler) Route(w http.ResponseWriter, r *http.Request) {
	batchID := strings.TrimSpace(r.PathValue("id"))
	if batchID == "" {
		writeError(w, r, http.StatusBadRequest, "batch id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		route, err := h.Repo.GetRoute(r.Context(), batchID)
		if err != nil {
			writeServiceError(w, r, "get route", err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(batchID, route))

	case http.MethodPost:
		force := false
		if v := r.URL.Query().Get("force"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "force must be a boolean")
				return
			}
			force = b
		}

		route, err := services.PlanBatchRoute(r.Context(), h.request(batchID, force), h.Repo, h.Estimator)
		if err != nil {
			writeServiceError(w, r, "plan batch route", err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(batchID, route))

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// PlanMany plans several batches concurrently and reports per-batch outcomes.
func (h *BatchHandler) PlanMany(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanBatchesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.BatchIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "batch_ids is required")
		return
	}
	if len(req.BatchIDs) > 50 {
		writeError(w, r, http.StatusBadRequest, "batch_ids must contain at most 50 ids")
		return
	}

	outcomes, err := services.PlanBatchRoutes(r.Context(), req.BatchIDs, h.request("", req.Force), h.Repo, h.Estimator)
	if err != nil {
		writeServiceError(w, r, "plan batch routes", err)
		return
	}

	res := dto.PlanBatchesResponse{Results: make([]dto.BatchOutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		out := dto.BatchOutcomeResponse{BatchID: o.BatchID}
		if o.Err != nil {
			out.Error = o.Err.Error()
		} else {
			route := dto.NewRouteResponse(o.BatchID, o.Route)
			out.Route = &route
		}
		res.Results = append(res.Results, out)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *BatchHandler) request(batchID string, force bool) services.PlanBatchRequest {
	return services.PlanBatchRequest{
		BatchID: batchID,
		Options: h.Options,
		Force:   force,
		Timeout: h.Timeout,
	}
}
