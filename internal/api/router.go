package api

import (
	"net/http"
	"time"

	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/api/handlers"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"
	"github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/ports"
)

// Deps groups the collaborators the HTTP layer needs. Cache and Geocoder are optional.
type Deps struct {
	Repo      ports.BatchRepository
	Estimator ports.DistanceEstimator
	Cache     ports.RouteCache
	Geocoder  ports.Geocoder
	Options   domain.OptimizerOptions
	CacheTTL  time.Duration
	Timeout   time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Estimator: deps.Estimator,
		Cache:     deps.Cache,
		CacheTTL:  deps.CacheTTL,
		Geocoder:  deps.Geocoder,
		Options:   deps.Options,
	}
	batchHandler := &handlers.BatchHandler{
		Repo:      deps.Repo,
		Estimator: deps.Estimator,
		Options:   deps.Options,
		Timeout:   deps.Timeout,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("/batches", batchHandler.List)
	mux.HandleFunc("/batches/routes", batchHandler.PlanMany)
	mux.HandleFunc("/batches/{id}/route", batchHandler.Route)

	return loggingMiddleware(mux)
}
