package queries

import (
	"errors"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/guard"
)

var ErrGetDriverStopsQueryIsNotConstructed = errors.New(
	"GetDriverStopsQuery must be created via NewGetDriverStopsQuery constructor",
)

// GetDriverStopsQuery retrieves the driver-facing stop list of a route.
// The first consumption of a planned route marks it in progress, so this
// query mutates route status as a side effect, exactly once.
//
// Example:
//
//	query, err := NewGetDriverStopsQuery(routeID)
//	if err != nil {
//	    return err
//	}
//	stops, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to load driver stops: %w", err)
//	}
//	for _, stop := range stops.Stops {
//	    fmt.Printf("%d. %s (ETA %s)\n", stop.Sequence, stop.Address, stop.ETA)
//	}
type GetDriverStopsQuery struct {
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDriverStopsQuery creates a query for a route's driver stop list.
func NewGetDriverStopsQuery(routeID kernel.UUID) (GetDriverStopsQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetDriverStopsQuery{}, err
	}
	return GetDriverStopsQuery{
		routeID: routeID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverStopsQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverStopsQueryIsNotConstructed)
}

// RouteID returns the identifier of the requested route.
func (q GetDriverStopsQuery) RouteID() kernel.UUID {
	return q.routeID
}

// GetDriverStopsQueryResponse is the driver-facing view of a route.
type GetDriverStopsQueryResponse struct {
	RouteID     kernel.UUID
	RouteStatus string
	Stops       []DriverStopResponse
}

// DriverStopResponse is one stop as shown to the driver: where to go,
// when to be there, and what delivery state it is in.
type DriverStopResponse struct {
	StopID   kernel.UUID
	OrderID  kernel.UUID
	Sequence int
	Address  string
	ETA      time.Time
	Status   string
}
