package domain

import "time"

// DeliveryBatch is one driver's set of stops for a delivery date, dispatched
// from a branch. Route is nil until the batch has been optimized.
type DeliveryBatch struct {
	BatchID      string
	DriverID     string
	BranchID     string
	DeliveryDate time.Time
	Origin       *Coordinates
	Stops        []Stop
	Route        *RouteResult
}
