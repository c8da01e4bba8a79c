package commands

import (
	"errors"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/pkg/guard"
)

var ErrChangeStopStatusCommandIsNotConstructed = errors.New(
	"ChangeStopStatusCommand must be created via NewChangeStopStatusCommand constructor",
)

// ChangeStopStatusCommand records a delivery status transition on a single
// stop: arrival, delivery, failure, or skip.
type ChangeStopStatusCommand struct { //nolint:recvcheck //using for validation
	stopID kernel.UUID
	target route.StopStatus

	guard guard.ConstructorGuard
}

// NewChangeStopStatusCommand creates a stop status transition command.
func NewChangeStopStatusCommand(stopID kernel.UUID, target route.StopStatus) (ChangeStopStatusCommand, error) {
	cmd := ChangeStopStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setStopID(stopID),
		cmd.setTarget(target),
	); err != nil {
		return ChangeStopStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeStopStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeStopStatusCommandIsNotConstructed)
}

// StopID returns the stop whose status changes.
func (c ChangeStopStatusCommand) StopID() kernel.UUID {
	return c.stopID
}

// Target returns the requested stop status.
func (c ChangeStopStatusCommand) Target() route.StopStatus {
	return c.target
}

func (c *ChangeStopStatusCommand) setStopID(stopID kernel.UUID) error {
	if err := stopID.Validate(); err != nil {
		return err
	}
	c.stopID = stopID
	return nil
}

func (c *ChangeStopStatusCommand) setTarget(target route.StopStatus) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}
