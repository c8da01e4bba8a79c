package commands

import (
	"errors"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/pkg/guard"
)

var (
	ErrCreateRouteCommandIsNotConstructed = errors.New(
		"CreateRouteCommand must be created via NewCreateRouteCommand constructor",
	)
	ErrOrderIDsAreRequired = errors.New("at least one order id is required")
	ErrDateIsRequired      = errors.New("route date is required")
)

// CreateRouteCommand represents a request to plan a new delivery route
// over a set of orders. The order-id list doubles as the visit order when
// the manual algorithm is requested.
//
// Example:
//
//	cmd, err := NewCreateRouteCommand(kernel.NewUUID(), date, orderIDs,
//	    &vehicleID, nil, route.AlgorithmCVRP)
//	if err != nil {
//	    return fmt.Errorf("invalid route request: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("route planning failed: %w", err)
//	}
type CreateRouteCommand struct { //nolint:recvcheck //using for validation
	routeID   kernel.UUID
	date      time.Time
	orderIDs  []kernel.UUID
	vehicleID *kernel.UUID
	driverID  *kernel.UUID
	startTime time.Time
	algorithm route.Algorithm

	guard guard.ConstructorGuard
}

// NewCreateRouteCommand creates a route planning command. Vehicle, driver
// and start time are optional; an empty algorithm defaults to
// nearest-neighbor. A zero start time defers to the configured workday
// start on the route date.
func NewCreateRouteCommand(
	routeID kernel.UUID,
	date time.Time,
	orderIDs []kernel.UUID,
	vehicleID *kernel.UUID,
	driverID *kernel.UUID,
	startTime time.Time,
	algorithm route.Algorithm,
) (CreateRouteCommand, error) {
	cmd := CreateRouteCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRouteID(routeID),
		cmd.setDate(date),
		cmd.setOrderIDs(orderIDs),
		cmd.setVehicleID(vehicleID),
		cmd.setDriverID(driverID),
		cmd.setStartTime(startTime),
		cmd.setAlgorithm(algorithm),
	); err != nil {
		return CreateRouteCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteCommandIsNotConstructed)
}

// RouteID returns the identifier the new route will carry.
func (c CreateRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

// Date returns the planning day of the route.
func (c CreateRouteCommand) Date() time.Time {
	return c.date
}

// OrderIDs returns the orders to route, in request order.
func (c CreateRouteCommand) OrderIDs() []kernel.UUID {
	return c.orderIDs
}

// VehicleID returns the assigned vehicle, if any.
func (c CreateRouteCommand) VehicleID() *kernel.UUID {
	return c.vehicleID
}

// DriverID returns the assigned driver, if any.
func (c CreateRouteCommand) DriverID() *kernel.UUID {
	return c.driverID
}

// StartTime returns the departure time, zero when unset.
func (c CreateRouteCommand) StartTime() time.Time {
	return c.startTime
}

// Algorithm returns the requested sequencing strategy.
func (c CreateRouteCommand) Algorithm() route.Algorithm {
	return c.algorithm
}

func (c *CreateRouteCommand) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	c.routeID = routeID
	return nil
}

func (c *CreateRouteCommand) setDate(date time.Time) error {
	if date.IsZero() {
		return ErrDateIsRequired
	}
	c.date = date
	return nil
}

func (c *CreateRouteCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return ErrOrderIDsAreRequired
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	c.orderIDs = append([]kernel.UUID(nil), orderIDs...)
	return nil
}

func (c *CreateRouteCommand) setVehicleID(vehicleID *kernel.UUID) error {
	if vehicleID != nil {
		if err := vehicleID.Validate(); err != nil {
			return err
		}
	}
	c.vehicleID = vehicleID
	return nil
}

func (c *CreateRouteCommand) setDriverID(driverID *kernel.UUID) error {
	if driverID != nil {
		if err := driverID.Validate(); err != nil {
			return err
		}
	}
	c.driverID = driverID
	return nil
}

func (c *CreateRouteCommand) setStartTime(startTime time.Time) error {
	c.startTime = startTime
	return nil
}

func (c *CreateRouteCommand) setAlgorithm(algorithm route.Algorithm) error {
	if algorithm == "" {
		algorithm = route.AlgorithmNearestNeighbor
	}
	if err := algorithm.Validate(); err != nil {
		return err
	}
	c.algorithm = algorithm
	return nil
}
