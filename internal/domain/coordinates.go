package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Validate rejects NaN/Inf and values outside [-90, 90] / [-180, 180].
// Out-of-range values are never clamped.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{Field: "lat", Reason: fmt.Sprintf("latitude %v outside [-90, 90]", c.Lat)}
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return &ValidationError{Field: "lon", Reason: fmt.Sprintf("longitude %v outside [-180, 180]", c.Lon)}
	}
	return nil
}
