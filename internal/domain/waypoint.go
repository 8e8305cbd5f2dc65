package domain

import "fmt"

// Coordinate is a (latitude, longitude) pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether c lies within the WGS84 ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Waypoint is one geographic point within a Loop.
// Order is the 1-based position at insertion time; it is not renumbered when
// the list changes, only ClearAll resets the whole list.
type Waypoint struct {
	ID int64 `json:"id"`
	Coordinate
	Label    string `json:"name"`
	StayHint string `json:"stayTime"`
	Order    int    `json:"order"`
}

// DefaultWaypointLabel is the label used when the user leaves it blank.
func DefaultWaypointLabel(position int) string {
	return fmt.Sprintf("Location %d", position)
}
