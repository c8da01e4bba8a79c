// Package route provides the Route aggregate: an ordered list of delivery
// stops planned for one vehicle on one date, together with the state
// machines that track the route and each stop through delivery.
//
// The package includes:
//   - Route: the aggregate root owning stop order, totals, and lifecycle
//   - Stop: one scheduled visit to an order's location within the route
//   - Status / StopStatus: state machines for route and stop lifecycles
//   - Polyline: the optional road-following geometry of the route
//   - Algorithm: the sequencing algorithm recorded on the route
//
// Key business rules:
//   - Stop sequence numbers within a route always form exactly {1..N}
//   - Route distance/duration totals equal the sum of per-leg costs
//   - Stop statuses follow PENDING, ARRIVED, then DELIVERED or FAILED,
//     with SKIPPED reachable from PENDING and ARRIVED; terminal states
//     are irreversible
//   - Once every stop is terminal the route auto-completes, exactly once
//   - A route transitions PLANNED to IN_PROGRESS the first time a delivery
//     actor consumes its stop list
package route
