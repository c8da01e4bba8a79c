package route

import (
	"fmt"

	"routing/internal/pkg/errs"
)

// Algorithm identifies the stop-sequencing algorithm a route was built
// with. The value is recorded on the route for reporting: the selection
// policy may substitute a fallback for the requested algorithm, and the
// route carries what actually ran.
type Algorithm string

const (
	// AlgorithmNearestNeighbor is the greedy nearest-neighbor heuristic and
	// the default when nothing else applies.
	AlgorithmNearestNeighbor Algorithm = "nearest_neighbor"

	// AlgorithmCVRP is the capacitated VRP solver with time windows.
	AlgorithmCVRP Algorithm = "cvrp"

	// AlgorithmExternal delegates sequencing of small batches to the
	// configured provider's optimization endpoint.
	AlgorithmExternal Algorithm = "external"

	// AlgorithmManual preserves the caller-supplied order unchanged.
	AlgorithmManual Algorithm = "manual"
)

// Validate checks whether the Algorithm is one of the known values.
func (a Algorithm) Validate() error {
	switch a {
	case AlgorithmNearestNeighbor, AlgorithmCVRP, AlgorithmExternal, AlgorithmManual:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("algorithm is invalid",
			fmt.Errorf("%q is not a known sequencing algorithm", string(a)))
	}
}

// String returns the wire/DB representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}
