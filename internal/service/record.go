package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/loopspot/loopspot/internal/domain"
)

// loopRecord is the stored form of a Loop. It keeps the key names the mobile
// app writes and reads older records leniently: loopId stands in for id, and
// missing or blank timestamps decode to the zero time.
type loopRecord struct {
	ID         string            `json:"id"`
	LegacyID   string            `json:"loopId,omitempty"`
	Name       string            `json:"loopName"`
	ApproxStay string            `json:"approxStay"`
	StartAt    string            `json:"startDateTime,omitempty"`
	EndAt      string            `json:"endDateTime,omitempty"`
	CreatedAt  string            `json:"createdAt,omitempty"`
	Locations  []domain.Waypoint `json:"locations"`
}

func encodeLoop(l domain.Loop) ([]byte, error) {
	rec := loopRecord{
		ID:         l.ID,
		Name:       l.Name,
		ApproxStay: l.ApproxStay,
		StartAt:    formatInstant(l.StartAt),
		EndAt:      formatInstant(l.EndAt),
		CreatedAt:  formatInstant(l.CreatedAt),
		Locations:  l.Waypoints,
	}
	if rec.Locations == nil {
		rec.Locations = []domain.Waypoint{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("service.encodeLoop: %w", err)
	}
	return data, nil
}

// decodeLoop reads a stored record. key is the store key the record was read
// under; it supplies the id for records that carry neither id nor loopId.
func decodeLoop(key string, data []byte) (domain.Loop, error) {
	var rec loopRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Loop{}, fmt.Errorf("service.decodeLoop: %w", err)
	}
	id := rec.ID
	if id == "" {
		id = rec.LegacyID
	}
	if id == "" {
		id = key
	}

	l := domain.Loop{
		ID:         id,
		Name:       rec.Name,
		ApproxStay: rec.ApproxStay,
		StartAt:    parseInstant(rec.StartAt),
		EndAt:      parseInstant(rec.EndAt),
		CreatedAt:  parseInstant(rec.CreatedAt),
		Waypoints:  make([]domain.Waypoint, len(rec.Locations)),
	}
	for i, w := range rec.Locations {
		if w.Order <= 0 {
			w.Order = i + 1
		}
		if strings.TrimSpace(w.Label) == "" {
			w.Label = domain.DefaultWaypointLabel(w.Order)
		}
		l.Waypoints[i] = w
	}
	return l, nil
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseInstant(s string) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
