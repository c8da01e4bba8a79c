package route

import (
	"errors"
	"fmt"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/errs"
)

// ErrStopIsNotConstructed is returned when a Stop instance was not created
// through the aggregate or RestoreStop.
var ErrStopIsNotConstructed = errors.New("Stop must be created via Route.AddStop or RestoreStop")

// Stop is one scheduled visit to an order's location within a route. Stops
// belong to exactly one Route; the aggregate owns sequence and status
// mutation, so all Stop state changes go through Route methods.
type Stop struct {
	id           kernel.UUID
	orderID      kernel.UUID
	sequence     int
	eta          time.Time
	status       StopStatus
	legDistanceM int
	legDurationS int

	isConstructed bool
}

// newStop creates a pending stop. Only the Route aggregate calls this, via
// AddStop, which also assigns the sequence position.
func newStop(
	id kernel.UUID,
	orderID kernel.UUID,
	sequence int,
	eta time.Time,
	legDistanceM int,
	legDurationS int,
) (*Stop, error) {
	if err := errors.Join(id.Validate(), orderID.Validate()); err != nil {
		return nil, err
	}
	if sequence < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("sequence",
			fmt.Errorf("%d is not greater than 0", sequence))
	}
	if legDistanceM < 0 || legDurationS < 0 {
		return nil, errs.NewValueIsInvalidError("leg cost must not be negative")
	}

	return &Stop{
		id:            id,
		orderID:       orderID,
		sequence:      sequence,
		eta:           eta,
		status:        StopStatusPending,
		legDistanceM:  legDistanceM,
		legDurationS:  legDurationS,
		isConstructed: true,
	}, nil
}

// RestoreStop reconstructs a stop from persistence, including its current
// status. Used only by repository adapters.
func RestoreStop(
	id kernel.UUID,
	orderID kernel.UUID,
	sequence int,
	eta time.Time,
	status StopStatus,
	legDistanceM int,
	legDurationS int,
) (*Stop, error) {
	s, err := newStop(id, orderID, sequence, eta, legDistanceM, legDurationS)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}
	s.status = status
	return s, nil
}

// Validate ensures the Stop instance was constructed by the aggregate.
func (s *Stop) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrStopIsNotConstructed
	}
	return nil
}

// ID returns the stop's unique identifier.
func (s *Stop) ID() kernel.UUID {
	return s.id
}

// OrderID returns the identifier of the order delivered at this stop.
func (s *Stop) OrderID() kernel.UUID {
	return s.orderID
}

// Sequence returns the 1-based position of the stop within its route.
func (s *Stop) Sequence() int {
	return s.sequence
}

// ETA returns the estimated arrival time at the stop.
func (s *Stop) ETA() time.Time {
	return s.eta
}

// Status returns the current delivery status of the stop.
func (s *Stop) Status() StopStatus {
	return s.status
}

// LegDistanceM returns the distance in meters of the leg arriving at this
// stop (from the previous stop, or the depot for the first stop).
func (s *Stop) LegDistanceM() int {
	return s.legDistanceM
}

// LegDurationS returns the travel duration in seconds of the leg arriving
// at this stop.
func (s *Stop) LegDurationS() int {
	return s.legDurationS
}
