package route

import (
	"errors"

	"routing/internal/core/domain/model/kernel"
)

// ErrPolylineTooShort is returned when a polyline has fewer than two
// vertices; a road-following path needs at least a start and an end.
var ErrPolylineTooShort = errors.New("polyline requires at least two vertices")

// Polyline is the optional road-following geometry of a route: an ordered
// list of coordinates approximating the path between depot and stops.
// It is an immutable value object regenerated lazily when absent.
type Polyline struct {
	points []kernel.GeoPoint
}

// NewPolyline creates a polyline from ordered vertices. Every vertex must
// be a properly constructed GeoPoint and at least two are required.
func NewPolyline(points []kernel.GeoPoint) (Polyline, error) {
	if len(points) < 2 {
		return Polyline{}, ErrPolylineTooShort
	}
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return Polyline{}, err
		}
	}
	return Polyline{points: append([]kernel.GeoPoint(nil), points...)}, nil
}

// Points returns a copy of the ordered vertices.
func (p Polyline) Points() []kernel.GeoPoint {
	return append([]kernel.GeoPoint(nil), p.points...)
}

// IsEmpty reports whether the polyline carries no geometry.
func (p Polyline) IsEmpty() bool {
	return len(p.points) == 0
}
