// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/guard"
)

var ErrGetRouteQueryIsNotConstructed = errors.New(
	"GetRouteQuery must be created via NewGetRouteQuery constructor",
)

// GetRouteQuery retrieves a single route with its ordered stops and, when
// present, the road-following polyline. This is the read model consumed by
// reporting and export surfaces.
//
// Example:
//
//	query, err := NewGetRouteQuery(routeID)
//	if err != nil {
//	    return err
//	}
//	routeView, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to load route: %w", err)
//	}
//	fmt.Printf("Route %s: %d stops, %.1f km\n",
//	    routeView.ID, len(routeView.Stops), routeView.DistanceKm)
type GetRouteQuery struct {
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetRouteQuery creates a query to retrieve one route by id.
func NewGetRouteQuery(routeID kernel.UUID) (GetRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetRouteQuery{}, err
	}
	return GetRouteQuery{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

// RouteID returns the identifier of the requested route.
func (q GetRouteQuery) RouteID() kernel.UUID {
	return q.routeID
}

// GetRouteQueryResponse is the route read model: header fields, aggregate
// leg totals, ordered stops, and the optional polyline.
type GetRouteQueryResponse struct {
	ID          kernel.UUID
	Date        time.Time
	Status      string
	Algorithm   string
	VehicleID   *kernel.UUID
	DriverID    *kernel.UUID
	DistanceKm  float64
	DurationMin float64
	Stops       []RouteStopResponse
	Polyline    []PolylinePointResponse
}

// RouteStopResponse is one stop in visit order.
type RouteStopResponse struct {
	ID           kernel.UUID
	OrderID      kernel.UUID
	Sequence     int
	ETA          time.Time
	Status       string
	LegDistanceM int
	LegDurationS int
}

// PolylinePointResponse is one vertex of the route geometry.
type PolylinePointResponse struct {
	Lat float64
	Lng float64
}
