package service

import (
	"context"
	"log/slog"

	"github.com/loopspot/loopspot/internal/domain"
)

// Default map span in degrees, matching the mobile app's initial region.
const (
	DefaultLatitudeDelta  = 0.02
	DefaultLongitudeDelta = 0.02
)

// Locator supplies the device's current position. It is best effort: any
// error leaves the map at its default region.
type Locator interface {
	Locate(ctx context.Context) (domain.Coordinate, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (domain.Coordinate, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context) (domain.Coordinate, error) {
	return f(ctx)
}

// Region is the area a map view should show.
type Region struct {
	Center         domain.Coordinate `json:"center"`
	LatitudeDelta  float64           `json:"latitudeDelta"`
	LongitudeDelta float64           `json:"longitudeDelta"`
	// Located is false when Center is the configured fallback.
	Located bool `json:"located"`
}

// MapCenter picks the initial map region.
type MapCenter struct {
	locator  Locator
	fallback domain.Coordinate
	log      *slog.Logger
}

// NewMapCenter constructs a MapCenter. locator may be nil when the host has
// no position source.
func NewMapCenter(locator Locator, fallback domain.Coordinate, log *slog.Logger) *MapCenter {
	if log == nil {
		log = slog.Default()
	}
	return &MapCenter{locator: locator, fallback: fallback, log: log}
}

// Region returns a region centred on the current position, or on the fallback
// when the position is unavailable. It never fails.
func (m *MapCenter) Region(ctx context.Context) Region {
	r := Region{Center: m.fallback, LatitudeDelta: DefaultLatitudeDelta, LongitudeDelta: DefaultLongitudeDelta}
	if m.locator == nil {
		return r
	}
	c, err := m.locator.Locate(ctx)
	if err != nil {
		m.log.WarnContext(ctx, "location unavailable, using default region", "error", err)
		return r
	}
	if !c.Valid() {
		m.log.WarnContext(ctx, "location out of range, using default region", "latitude", c.Latitude, "longitude", c.Longitude)
		return r
	}
	r.Center = c
	r.Located = true
	return r
}
