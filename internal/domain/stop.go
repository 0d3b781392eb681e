package domain

// Stop is one geocoded delivery destination within a batch.
// The optimizer only reorders references to stops; it never mutates them.
type Stop struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Location Coordinates `json:"location"`
	OrderRef string      `json:"order_ref,omitempty"`
}
