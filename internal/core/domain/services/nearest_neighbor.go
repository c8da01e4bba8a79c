package services

import (
	"math"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
)

// NearestNeighborSequence orders demand points greedily: starting at the
// depot, it repeatedly visits the closest unvisited point by road
// distance. Ties are broken by input order, so the result is
// deterministic for a given matrix and point slice.
//
// Parameters:
//   - matrix: travel costs with row 0 as the depot and row i+1 as points[i]
//   - points: demand points to order
//
// Returns:
//   - SequenceResult: the greedy ordering with leg costs; nothing is dropped
//   - error: when the matrix does not cover all points
func NearestNeighborSequence(matrix kernel.CostMatrix, points []DemandPoint) (SequenceResult, error) {
	if err := checkMatrix(matrix, len(points)); err != nil {
		return SequenceResult{}, err
	}

	n := len(points)
	visited := make([]bool, n)
	tour := make([]int, 0, n)
	current := 0

	for len(tour) < n {
		best := -1
		bestDistance := math.MaxInt

		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			if d := matrix.At(current, i+1).DistanceM; d < bestDistance {
				bestDistance = d
				best = i
			}
		}

		visited[best] = true
		tour = append(tour, best)
		current = best + 1
	}

	return SequenceResult{
		Stops:     stopsFromTour(matrix, points, tour),
		Algorithm: route.AlgorithmNearestNeighbor,
	}, nil
}
