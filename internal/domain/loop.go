// Package domain contains the core data types for Loopspot.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler, linkcodec).
package domain

import "time"

// Loop is a named, time-boxed meetup with an ordered list of waypoints.
// A loop is the top-level aggregate; waypoints belong to exactly one loop.
//
// The JSON field names match the records written by the mobile app, so a
// record stored by either side can be read back by the other.
type Loop struct {
	ID         string     `json:"id"`
	Name       string     `json:"loopName"`
	StartAt    time.Time  `json:"startDateTime"`
	EndAt      time.Time  `json:"endDateTime"`
	ApproxStay string     `json:"approxStay"`
	CreatedAt  time.Time  `json:"createdAt"`
	Waypoints  []Waypoint `json:"locations"`
}

// Clone returns a copy of l whose waypoint slice does not alias l's.
func (l Loop) Clone() Loop {
	out := l
	out.Waypoints = make([]Waypoint, len(l.Waypoints))
	copy(out.Waypoints, l.Waypoints)
	return out
}

// WaypointByID returns the waypoint with the given id and whether it exists.
func (l Loop) WaypointByID(id int64) (Waypoint, bool) {
	for _, w := range l.Waypoints {
		if w.ID == id {
			return w, true
		}
	}
	return Waypoint{}, false
}

// MaxWaypointID returns the highest waypoint id in the loop, or 0 when empty.
func (l Loop) MaxWaypointID() int64 {
	var max int64
	for _, w := range l.Waypoints {
		if w.ID > max {
			max = w.ID
		}
	}
	return max
}
