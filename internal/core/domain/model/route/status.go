package route

import (
	"fmt"

	"routing/internal/pkg/errs"
)

// Status represents the lifecycle state of a route.
//
// State transitions:
//
//	Planned ──> InProgress ──> Completed
//	   └──────────────────────────┘
//	 (all stops terminal before consumption)
//
// Planned routes become InProgress the first time a delivery actor consumes
// the stop list, and Completed once every stop reached a terminal status.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusPlanned is the initial status assigned at route creation.
	StatusPlanned

	// StatusInProgress indicates a delivery actor started working the route.
	StatusInProgress

	// StatusCompleted indicates every stop reached a terminal status.
	// This is a final state.
	StatusCompleted
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:    "Unknown",
		StatusPlanned:    "Planned",
		StatusInProgress: "InProgress",
		StatusCompleted:  "Completed",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPlanned:    "Planned",
		StatusInProgress: "InProgress",
		StatusCompleted:  "Completed",
	}
}

// Validate checks whether the Status value is one of the valid states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid route status", s))
	}
	return nil
}

// String returns the human-readable name of the status. It implements
// fmt.Stringer and is safe on invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// start transitions the status to InProgress. Only Planned routes can
// start; starting an InProgress route is a no-op handled by the caller.
func (s Status) start() (Status, error) {
	if s != StatusPlanned {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to start", s.String()))
	}
	return StatusInProgress, nil
}

// complete transitions the status to Completed. Valid from Planned and
// InProgress; a route may complete without consumption when terminal stop
// updates arrive before any actor pulled the stop list.
func (s Status) complete() (Status, error) {
	if s != StatusPlanned && s != StatusInProgress {
		return 0, errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()))
	}
	return StatusCompleted, nil
}
