package commands

import (
	"errors"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/guard"
)

var ErrReorderStopsCommandIsNotConstructed = errors.New(
	"ReorderStopsCommand must be created via NewReorderStopsCommand constructor",
)

// ReorderStopsCommand re-sequences the stops of an existing route to match
// the supplied order-id list. Ids that have no stop on the route are
// ignored; unmentioned stops keep their relative order after the mentioned
// ones.
type ReorderStopsCommand struct { //nolint:recvcheck //using for validation
	routeID  kernel.UUID
	orderIDs []kernel.UUID

	guard guard.ConstructorGuard
}

// NewReorderStopsCommand creates a stop reordering command.
func NewReorderStopsCommand(routeID kernel.UUID, orderIDs []kernel.UUID) (ReorderStopsCommand, error) {
	cmd := ReorderStopsCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRouteID(routeID),
		cmd.setOrderIDs(orderIDs),
	); err != nil {
		return ReorderStopsCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReorderStopsCommand) Validate() error {
	return c.guard.Validate(ErrReorderStopsCommandIsNotConstructed)
}

// RouteID returns the route whose stops are re-sequenced.
func (c ReorderStopsCommand) RouteID() kernel.UUID {
	return c.routeID
}

// OrderIDs returns the desired visit order.
func (c ReorderStopsCommand) OrderIDs() []kernel.UUID {
	return c.orderIDs
}

func (c *ReorderStopsCommand) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	c.routeID = routeID
	return nil
}

func (c *ReorderStopsCommand) setOrderIDs(orderIDs []kernel.UUID) error {
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
