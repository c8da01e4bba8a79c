package ports

import (
	"context"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/order"
	"routing/internal/core/domain/model/route"
	"routing/internal/core/domain/model/vehicle"
)

// RouteRepository defines the persistence contract for route aggregates,
// including their stops and optional polyline.
type RouteRepository interface {
	// Add persists a new route aggregate with all its stops.
	Add(ctx context.Context, aggregate *route.Route) error

	// Update persists changes to an existing route aggregate: status,
	// stop sequences/statuses, and polyline presence.
	Update(ctx context.Context, aggregate *route.Route) error

	// Get retrieves a route aggregate by its unique identifier, stops
	// ordered by sequence, polyline attached when present.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// GetByStopID retrieves the route aggregate owning the given stop.
	GetByStopID(ctx context.Context, stopID kernel.UUID) (*route.Route, error)
}

// OrderRepository is the read-only access to order records. Order lifecycle
// is owned by the external ERP/WMS sync; the routing core never writes.
type OrderRepository interface {
	// GetByIDs retrieves the orders with the given identifiers, detail
	// lines included. Unknown ids are silently absent from the result.
	GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)
}

// VehicleRepository is the read-only access to vehicle records.
type VehicleRepository interface {
	// Get retrieves a vehicle by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error)
}
