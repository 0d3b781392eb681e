package domain

// Represents a single stop in an optimized delivery route.
// Sequence is 1-based in visiting order. Leg values describe the hop from the
// previous position (the origin for the first stop when one is set).
type RouteStop struct {
	Sequence                  int     `json:"sequence"`
	Stop                      Stop    `json:"stop"`
	LegDistanceKm             float64 `json:"leg_distance_km"`
	LegDurationSeconds        float64 `json:"leg_duration_seconds"`
	CumulativeDistanceKm      float64 `json:"cumulative_distance_km"`
	CumulativeDurationSeconds float64 `json:"cumulative_duration_seconds"`
}

// Improvement compares the optimized tour against the caller-supplied order.
type Improvement struct {
	BaselineDistanceKm float64 `json:"baseline_distance_km"`
	DistanceSavedKm    float64 `json:"distance_saved_km"`
	PercentageImproved float64 `json:"percentage_improved"`
}

// Represents the optimized route for one delivery batch.
// A RouteResult is immutable planning data and contains no side effects.
// BudgetExceeded marks a valid but possibly sub-optimal tour: the improvement
// loop stopped on its iteration cap or deadline before converging.
type RouteResult struct {
	Origin               *Coordinates `json:"origin,omitempty"`
	Stops                []RouteStop  `json:"stops"`
	TotalDistanceKm      float64      `json:"total_distance_km"`
	TotalDurationSeconds float64      `json:"total_duration_seconds"`
	Improvement          Improvement  `json:"improvement"`
	Iterations           int          `json:"iterations"`
	BudgetExceeded       bool         `json:"budget_exceeded"`
}

// StopIDs returns stop identifiers in visiting order.
func (r *RouteResult) StopIDs() []string {
	ids := make([]string, 0, len(r.Stops))
	for _, s := range r.Stops {
		ids = append(ids, s.Stop.ID)
	}
	return ids
}
