package route

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/pkg/errs"
)

var (
	// ErrRouteIsNotConstructed is returned when a Route instance was not
	// created through NewRoute or RestoreRoute.
	ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute or RestoreRoute constructor")

	// ErrRouteIsNotPlanned is returned when attempting to extend a route
	// after delivery started.
	ErrRouteIsNotPlanned = errors.New("stops can only be added to a planned route")

	// ErrRouteIsCompleted is returned when mutating a completed route.
	ErrRouteIsCompleted = errors.New("route is completed")

	// ErrOrderAlreadyRouted is returned when a second stop for the same
	// order is added to one route.
	ErrOrderAlreadyRouted = errors.New("order already has a stop on this route")

	// ErrBrokenSequence is returned when restored stops do not form the
	// contiguous sequence set {1..N}.
	ErrBrokenSequence = errors.New("stop sequences must form exactly {1..N}")
)

// Route is the aggregate root for one planned vehicle run: an ordered list
// of stops for a date, with aggregate travel cost and optional road
// geometry. The aggregate owns all stop mutation; a given Route and its
// stops are written only by the single call that created or is reordering
// it, so no internal locking is needed.
type Route struct {
	id        kernel.UUID
	date      time.Time
	status    Status
	algorithm Algorithm
	vehicleID *kernel.UUID
	driverID  *kernel.UUID
	stops     []*Stop

	polyline    Polyline
	hasPolyline bool

	isConstructed bool
}

// NewRoute creates an empty planned route. Vehicle and driver are optional:
// a route can be planned before assignment and bound later by the fleet
// surface.
func NewRoute(
	id kernel.UUID,
	date time.Time,
	algorithm Algorithm,
	vehicleID *kernel.UUID,
	driverID *kernel.UUID,
) (*Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := algorithm.Validate(); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, errs.NewValueIsRequiredError("date")
	}
	if vehicleID != nil {
		if err := vehicleID.Validate(); err != nil {
			return nil, err
		}
	}
	if driverID != nil {
		if err := driverID.Validate(); err != nil {
			return nil, err
		}
	}

	return &Route{
		id:            id,
		date:          date,
		status:        StatusPlanned,
		algorithm:     algorithm,
		vehicleID:     vehicleID,
		driverID:      driverID,
		isConstructed: true,
	}, nil
}

// RestoreRoute reconstructs a route from persistence. Stops are reordered
// by their sequence numbers, which must form exactly {1..N}; totals are
// recomputed from the per-leg costs so the sum invariant holds by
// construction.
func RestoreRoute(
	id kernel.UUID,
	date time.Time,
	status Status,
	algorithm Algorithm,
	vehicleID *kernel.UUID,
	driverID *kernel.UUID,
	stops []*Stop,
) (*Route, error) {
	r, err := NewRoute(id, date, algorithm, vehicleID, driverID)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}

	sorted := append([]*Stop(nil), stops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].sequence < sorted[j].sequence })
	for i, s := range sorted {
		if err = s.Validate(); err != nil {
			return nil, err
		}
		if s.sequence != i+1 {
			return nil, fmt.Errorf("%w: got %d at position %d", ErrBrokenSequence, s.sequence, i+1)
		}
	}

	r.status = status
	r.stops = sorted
	return r, nil
}

// Validate ensures the Route instance was constructed through a constructor.
func (r *Route) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRouteIsNotConstructed
	}
	return nil
}

// ID returns the route's unique identifier.
func (r *Route) ID() kernel.UUID {
	return r.id
}

// Date returns the delivery date the route is planned for.
func (r *Route) Date() time.Time {
	return r.date
}

// Status returns the current lifecycle status of the route.
func (r *Route) Status() Status {
	return r.status
}

// Algorithm returns the sequencing algorithm the route was built with.
func (r *Route) Algorithm() Algorithm {
	return r.algorithm
}

// VehicleID returns the assigned vehicle's ID, or nil when unassigned.
func (r *Route) VehicleID() *kernel.UUID {
	return r.vehicleID
}

// DriverID returns the assigned driver's ID, or nil when unassigned.
func (r *Route) DriverID() *kernel.UUID {
	return r.driverID
}

// Stops returns the stops ordered by sequence. The slice is a copy but the
// stops are the aggregate's own entities; callers must not mutate them.
func (r *Route) Stops() []*Stop {
	return append([]*Stop(nil), r.stops...)
}

// DistanceKm returns the total route distance: the sum of per-leg
// distances, in kilometers.
func (r *Route) DistanceKm() float64 {
	total := 0
	for _, s := range r.stops {
		total += s.legDistanceM
	}
	return float64(total) / 1000.0
}

// DurationMin returns the total route travel duration: the sum of per-leg
// durations, in minutes.
func (r *Route) DurationMin() float64 {
	total := 0
	for _, s := range r.stops {
		total += s.legDurationS
	}
	return float64(total) / 60.0
}

// AddStop appends a pending stop at the next sequence position. Only
// planned routes accept new stops, and an order may appear at most once
// per route.
func (r *Route) AddStop(
	stopID kernel.UUID,
	orderID kernel.UUID,
	eta time.Time,
	legDistanceM int,
	legDurationS int,
) (*Stop, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.status != StatusPlanned {
		return nil, ErrRouteIsNotPlanned
	}
	for _, s := range r.stops {
		if s.orderID.IsEqual(orderID) {
			return nil, ErrOrderAlreadyRouted
		}
	}

	stop, err := newStop(stopID, orderID, len(r.stops)+1, eta, legDistanceM, legDurationS)
	if err != nil {
		return nil, err
	}
	r.stops = append(r.stops, stop)
	return stop, nil
}

// Consume marks the stop list as pulled by a delivery actor, transitioning
// a planned route to in-progress. Returns true when the status changed;
// repeated consumption is an idempotent no-op.
func (r *Route) Consume() bool {
	if r.status != StatusPlanned {
		return false
	}
	newStatus, err := r.status.start()
	if err != nil {
		return false
	}
	r.status = newStatus
	return true
}

// ChangeStopStatus transitions one stop's delivery status. Setting a stop
// to its current terminal status is an idempotent no-op (delivery
// confirmations may be retried); any other transition out of a terminal
// status fails.
//
// After a stop reaches a terminal status, the route auto-completes when
// every stop is terminal. The returned flag is true only for the call that
// actually completed the route, so completion side effects run exactly once.
func (r *Route) ChangeStopStatus(stopID kernel.UUID, target StopStatus) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}

	stop := r.findStop(stopID)
	if stop == nil {
		return false, errs.NewObjectNotFoundError("stopId", stopID.String())
	}

	if stop.status == target && target.IsTerminal() {
		return false, nil
	}

	newStatus, err := stop.status.transitionTo(target)
	if err != nil {
		return false, err
	}
	stop.status = newStatus

	if !newStatus.IsTerminal() || r.status == StatusCompleted {
		return false, nil
	}
	for _, s := range r.stops {
		if !s.status.IsTerminal() {
			return false, nil
		}
	}

	completed, err := r.status.complete()
	if err != nil {
		return false, err
	}
	r.status = completed
	return true, nil
}

// Reorder re-sequences the stops to match the supplied order-id list.
// Order ids that have no stop on this route are ignored; stops whose
// orders are not mentioned keep their relative order after the mentioned
// ones. ETAs are intentionally left untouched: a manual reorder is trusted
// to fix arrival times out-of-band.
func (r *Route) Reorder(orderIDs []kernel.UUID) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.status == StatusCompleted {
		return ErrRouteIsCompleted
	}

	reordered := make([]*Stop, 0, len(r.stops))
	taken := make(map[kernel.UUID]bool, len(r.stops))
	for _, orderID := range orderIDs {
		for _, s := range r.stops {
			if s.orderID.IsEqual(orderID) && !taken[s.id] {
				reordered = append(reordered, s)
				taken[s.id] = true
				break
			}
		}
	}
	for _, s := range r.stops {
		if !taken[s.id] {
			reordered = append(reordered, s)
		}
	}

	for i, s := range reordered {
		s.sequence = i + 1
	}
	r.stops = reordered
	return nil
}

// AttachPolyline stores the road-following geometry for the route.
func (r *Route) AttachPolyline(p Polyline) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if p.IsEmpty() {
		return ErrPolylineTooShort
	}
	r.polyline = p
	r.hasPolyline = true
	return nil
}

// RemovePolyline drops the geometry, e.g. after a reorder invalidated it.
func (r *Route) RemovePolyline() {
	r.polyline = Polyline{}
	r.hasPolyline = false
}

// Polyline returns the route geometry and whether one is attached.
func (r *Route) Polyline() (Polyline, bool) {
	return r.polyline, r.hasPolyline
}

func (r *Route) findStop(stopID kernel.UUID) *Stop {
	for _, s := range r.stops {
		if s.id.IsEqual(stopID) {
			return s
		}
	}
	return nil
}
