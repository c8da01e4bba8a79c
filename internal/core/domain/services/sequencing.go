package services

import (
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/pkg/errs"
)

// ExternalBatchLimit is the largest point set delegated to an external
// route optimizer. Bigger batches are sequenced locally.
const ExternalBatchLimit = 12

// DemandPoint is one order to be visited: its resolved coordinate, the
// goods it adds to the vehicle load, and an optional delivery time window.
// Zero window bounds mean the point accepts delivery at any time of the
// planning day.
type DemandPoint struct {
	OrderID     kernel.UUID
	Point       kernel.GeoPoint
	MassKg      float64
	VolumeM3    float64
	WindowStart time.Time
	WindowEnd   time.Time
}

// VehicleCapacity bounds the total load a route may carry. The zero value
// lifts both constraints.
type VehicleCapacity struct {
	MassKg   float64
	VolumeM3 float64
}

// SequencedStop is one position in a computed visit order. PointIndex
// refers back to the input demand point slice, and Leg is the travel cost
// from the previous position (the depot for the first stop).
type SequencedStop struct {
	PointIndex int
	OrderID    kernel.UUID
	Leg        kernel.Leg
}

// SequenceResult is the outcome of a sequencing strategy: the ordered
// stops, the orders that could not be routed, and the algorithm that
// produced the ordering.
type SequenceResult struct {
	Stops     []SequencedStop
	Dropped   []kernel.UUID
	Algorithm route.Algorithm
}

// SelectAlgorithm chooses the sequencing strategy for a planning request.
//
// Policy:
//   - A manual request always wins; the caller's order is preserved.
//   - The external optimizer is preferred whenever a provider offers one
//     and the batch is small enough for a single optimization call.
//   - An explicit solver request falls through to the CVRP solver.
//   - Everything else defaults to nearest-neighbor.
func SelectAlgorithm(requested route.Algorithm, pointCount int, externalAvailable bool) route.Algorithm {
	if requested == route.AlgorithmManual {
		return route.AlgorithmManual
	}
	if externalAvailable && pointCount > 0 && pointCount <= ExternalBatchLimit {
		return route.AlgorithmExternal
	}
	if requested == route.AlgorithmCVRP {
		return route.AlgorithmCVRP
	}
	return route.AlgorithmNearestNeighbor
}

// ManualSequence keeps the demand points in their given order and only
// attaches per-leg travel costs from the matrix.
//
// Parameters:
//   - matrix: travel costs with row 0 as the depot and row i+1 as points[i]
//   - points: demand points in the order the caller wants them visited
//
// Returns:
//   - SequenceResult: the identity ordering with leg costs
//   - error: when the matrix does not cover all points
func ManualSequence(matrix kernel.CostMatrix, points []DemandPoint) (SequenceResult, error) {
	if err := checkMatrix(matrix, len(points)); err != nil {
		return SequenceResult{}, err
	}

	tour := make([]int, len(points))
	for i := range tour {
		tour[i] = i
	}

	return SequenceResult{
		Stops:     stopsFromTour(matrix, points, tour),
		Algorithm: route.AlgorithmManual,
	}, nil
}

// SequenceFromPermutation applies an externally computed visit order.
// The permutation must mention every point index exactly once; anything
// else is rejected so that a misbehaving optimizer cannot lose or
// duplicate orders.
//
// Parameters:
//   - matrix: travel costs with row 0 as the depot and row i+1 as points[i]
//   - points: demand points in their original order
//   - permutation: point indices in visit order
//
// Returns:
//   - SequenceResult: the permuted ordering with leg costs
//   - error: when the permutation is not a bijection over the points or
//     the matrix does not cover all points
func SequenceFromPermutation(matrix kernel.CostMatrix, points []DemandPoint, permutation []int) (SequenceResult, error) {
	if err := checkMatrix(matrix, len(points)); err != nil {
		return SequenceResult{}, err
	}
	if len(permutation) != len(points) {
		return SequenceResult{}, errs.NewValueIsInvalidError("permutation")
	}

	seen := make([]bool, len(points))
	for _, idx := range permutation {
		if idx < 0 || idx >= len(points) || seen[idx] {
			return SequenceResult{}, errs.NewValueIsInvalidError("permutation")
		}
		seen[idx] = true
	}

	return SequenceResult{
		Stops:     stopsFromTour(matrix, points, permutation),
		Algorithm: route.AlgorithmExternal,
	}, nil
}

// checkMatrix verifies the matrix covers the depot plus every point.
func checkMatrix(matrix kernel.CostMatrix, pointCount int) error {
	if matrix.Size() != pointCount+1 {
		return errs.NewValueIsInvalidError("matrix")
	}
	return nil
}

// stopsFromTour materializes per-leg travel costs for a visit order.
// tour holds point indices; matrix rows are shifted by one for the depot.
func stopsFromTour(matrix kernel.CostMatrix, points []DemandPoint, tour []int) []SequencedStop {
	stops := make([]SequencedStop, 0, len(tour))
	prev := 0
	for _, idx := range tour {
		stops = append(stops, SequencedStop{
			PointIndex: idx,
			OrderID:    points[idx].OrderID,
			Leg:        matrix.At(prev, idx+1),
		})
		prev = idx + 1
	}
	return stops
}
