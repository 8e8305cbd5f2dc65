package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per waypoint, with loop fields
// repeated for every waypoint of that loop. Loops with no waypoints yield one
// row with zero values for all waypoint fields.
type ExportRow struct {
	// Loop fields, repeated for every waypoint of the loop.
	LoopID     string    `json:"loopId"`
	LoopName   string    `json:"loopName"`
	StartAt    time.Time `json:"startDateTime"`
	EndAt      time.Time `json:"endDateTime"`
	ApproxStay string    `json:"approxStay,omitempty"`

	// Waypoint fields, zero when the loop has no waypoints.
	WaypointOrder int      `json:"order,omitempty"`
	WaypointLabel string   `json:"name,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	StayHint      string   `json:"stayTime,omitempty"`
}

// ExportRows flattens loops into export rows, preserving loop and waypoint order.
func ExportRows(loops []Loop) []ExportRow {
	rows := make([]ExportRow, 0, len(loops))
	for _, l := range loops {
		base := ExportRow{
			LoopID:     l.ID,
			LoopName:   l.Name,
			StartAt:    l.StartAt,
			EndAt:      l.EndAt,
			ApproxStay: l.ApproxStay,
		}
		if len(l.Waypoints) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, w := range l.Waypoints {
			row := base
			lat, lon := w.Latitude, w.Longitude
			row.WaypointOrder = w.Order
			row.WaypointLabel = w.Label
			row.Latitude = &lat
			row.Longitude = &lon
			row.StayHint = w.StayHint
			rows = append(rows, row)
		}
	}
	return rows
}
