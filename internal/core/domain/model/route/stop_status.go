package route

import (
	"fmt"

	"routing/internal/pkg/errs"
)

// StopStatus represents the delivery state of a single stop.
//
// State transitions:
//
//	Pending ──> Arrived ──> Delivered
//	   │           ├──────> Failed
//	   └───────────┴──────> Skipped
//
// Delivered, Failed, and Skipped are terminal: no transition leaves them
// through this subsystem.
type StopStatus int

const (
	// StopStatusUnknown represents an invalid or undefined status.
	StopStatusUnknown StopStatus = iota

	// StopStatusPending is the initial status assigned at route creation.
	StopStatusPending

	// StopStatusArrived indicates the driver reached the stop location.
	StopStatusArrived

	// StopStatusDelivered indicates the order was handed over. Terminal.
	StopStatusDelivered

	// StopStatusFailed indicates the delivery attempt failed. Terminal.
	StopStatusFailed

	// StopStatusSkipped indicates the stop was deliberately left out of the
	// run. Terminal.
	StopStatusSkipped
)

func getStopStatusStrings() map[StopStatus]string {
	return map[StopStatus]string{
		StopStatusUnknown:   "Unknown",
		StopStatusPending:   "Pending",
		StopStatusArrived:   "Arrived",
		StopStatusDelivered: "Delivered",
		StopStatusFailed:    "Failed",
		StopStatusSkipped:   "Skipped",
	}
}

// Validate checks whether the StopStatus value is one of the valid states.
func (s StopStatus) Validate() error {
	if s < StopStatusPending || s > StopStatusSkipped {
		return errs.NewValueIsInvalidErrorWithCause("stop status is invalid",
			fmt.Errorf("%d is not a valid stop status", s))
	}
	return nil
}

// String returns the human-readable name of the status. It implements
// fmt.Stringer and is safe on invalid values.
func (s StopStatus) String() string {
	if str, ok := getStopStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status admits no further transitions.
func (s StopStatus) IsTerminal() bool {
	return s == StopStatusDelivered || s == StopStatusFailed || s == StopStatusSkipped
}

// transitionTo validates and performs the transition to the target status.
func (s StopStatus) transitionTo(target StopStatus) (StopStatus, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}

	allowed := false
	switch s {
	case StopStatusPending:
		allowed = target == StopStatusArrived || target == StopStatusSkipped
	case StopStatusArrived:
		allowed = target == StopStatusDelivered || target == StopStatusFailed || target == StopStatusSkipped
	default:
		// Terminal and Unknown states admit no transition.
	}

	if !allowed {
		return 0, errs.NewValueIsInvalidErrorWithCause("stop status transition is invalid",
			fmt.Errorf("cannot transition from %s to %s", s.String(), target.String()))
	}
	return target, nil
}
