package dto

import "github.com/NdururiJr/lorenzo-management-pos-system-sub006/internal/domain"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StopRequest carries either coordinates or an address to geocode.
type StopRequest struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	OrderRef string   `json:"order_ref"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Address  string   `json:"address"`
}

type OptimizeRouteRequest struct {
	Origin          *Coordinates  `json:"origin"`
	Stops           []StopRequest `json:"stops"`
	AverageSpeedKmh *float64      `json:"average_speed_kmh"`
	MaxIterations   *int          `json:"max_iterations"`
}

type RouteStopResponse struct {
	Sequence                  int     `json:"sequence"`
	ID                        string  `json:"id"`
	Label                     string  `json:"label"`
	OrderRef                  string  `json:"order_ref,omitempty"`
	Lat                       float64 `json:"lat"`
	Lon                       float64 `json:"lon"`
	LegDistanceKm             float64 `json:"leg_distance_km"`
	LegDurationSeconds        float64 `json:"leg_duration_seconds"`
	CumulativeDistanceKm      float64 `json:"cumulative_distance_km"`
	CumulativeDurationSeconds float64 `json:"cumulative_duration_seconds"`
}

type ImprovementResponse struct {
	BaselineDistanceKm float64 `json:"baseline_distance_km"`
	DistanceSavedKm    float64 `json:"distance_saved_km"`
	PercentageImproved float64 `json:"percentage_improved"`
}

type RouteResponse struct {
	BatchID              string              `json:"batch_id,omitempty"`
	Origin               *Coordinates        `json:"origin,omitempty"`
	TotalDistanceKm      float64             `json:"total_distance_km"`
	TotalDurationSeconds float64             `json:"total_duration_seconds"`
	Improvement          ImprovementResponse `json:"improvement"`
	Iterations           int                 `json:"iterations"`
	BudgetExceeded       bool                `json:"budget_exceeded"`
	Stops                []RouteStopResponse `json:"stops"`
}

type PlanBatchesRequest struct {
	BatchIDs []string `json:"batch_ids"`
	Force    bool     `json:"force"`
}

type BatchOutcomeResponse struct {
	BatchID string         `json:"batch_id"`
	Route   *RouteResponse `json:"route,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type PlanBatchesResponse struct {
	Results []BatchOutcomeResponse `json:"results"`
}

type ListBatchesResponse struct {
	BatchIDs []string `json:"batch_ids"`
}

// NewRouteResponse maps a domain route to its wire form.
func NewRouteResponse(batchID string, r *domain.RouteResult) RouteResponse {
	res := RouteResponse{
		BatchID:              batchID,
		TotalDistanceKm:      r.TotalDistanceKm,
		TotalDurationSeconds: r.TotalDurationSeconds,
		Improvement: ImprovementResponse{
			BaselineDistanceKm: r.Improvement.BaselineDistanceKm,
			DistanceSavedKm:    r.Improvement.DistanceSavedKm,
			PercentageImproved: r.Improvement.PercentageImproved,
		},
		Iterations:     r.Iterations,
		BudgetExceeded: r.BudgetExceeded,
		Stops:          make([]RouteStopResponse, 0, len(r.Stops)),
	}
	if r.Origin != nil {
		res.Origin = &Coordinates{Lat: r.Origin.Lat, Lon: r.Origin.Lon}
	}

	for _, s := range r.Stops {
		res.Stops = append(res.Stops, RouteStopResponse{
			Sequence:                  s.Sequence,
			ID:                        s.Stop.ID,
			Label:                     s.Stop.Label,
			OrderRef:                  s.Stop.OrderRef,
			Lat:                       s.Stop.Location.Lat,
			Lon:                       s.Stop.Location.Lon,
			LegDistanceKm:             s.LegDistanceKm,
			LegDurationSeconds:        s.LegDurationSeconds,
			CumulativeDistanceKm:      s.CumulativeDistanceKm,
			CumulativeDurationSeconds: s.CumulativeDurationSeconds,
		})
	}

	return res
}
