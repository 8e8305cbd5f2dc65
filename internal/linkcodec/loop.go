package linkcodec

import (
	"strings"
	"time"

	"github.com/loopspot/loopspot/internal/domain"
)

// ToLoop builds a Loop keyed by id from a decoded payload. The loop has no
// waypoints. Times come from the ISO fields, falling back to the display
// date and time pair; anything missing stays the zero time.
// A payload whose end is before its start has both times dropped.
// It reports false when the payload has no usable name.
func (c *Codec) ToLoop(id string, p domain.SharePayload) (domain.Loop, bool) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return domain.Loop{}, false
	}
	start := c.instant(p.StartDateTime, p.StartDate, p.StartTime)
	end := c.instant(p.EndDateTime, p.EndDate, p.EndTime)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		start, end = time.Time{}, time.Time{}
	}
	return domain.Loop{
		ID:         id,
		Name:       name,
		StartAt:    start,
		EndAt:      end,
		ApproxStay: strings.TrimSpace(p.ApproxStay),
		CreatedAt:  parseISO(p.CreatedAt),
		Waypoints:  []domain.Waypoint{},
	}, true
}

func (c *Codec) instant(iso, date, clock string) time.Time {
	if t := parseISO(iso); !t.IsZero() {
		return t
	}
	if date == "" || clock == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, c.loc)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseISO(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
