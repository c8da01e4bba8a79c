package services_test

import (
	"testing"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePoints(t *testing.T, n int) []services.DemandPoint {
	t.Helper()

	points := make([]services.DemandPoint, n)
	for i := range points {
		pt, err := kernel.NewGeoPoint(float64(i), float64(i))
		require.NoError(t, err)
		points[i] = services.DemandPoint{OrderID: kernel.NewUUID(), Point: pt}
	}
	return points
}

func matrixFromDistances(distances [][]int) kernel.CostMatrix {
	m := kernel.NewCostMatrix(len(distances))
	for i := range distances {
		for j := range distances[i] {
			m.Set(i, j, kernel.Leg{DistanceM: distances[i][j], DurationS: distances[i][j] / 10})
		}
	}
	return m
}

func TestNearestNeighborSequence(t *testing.T) {
	t.Run("visits_closest_first", func(t *testing.T) {
		// Depot distances: point 0 at 15 km, point 1 at 5 km, point 2 at 10 km.
		matrix := matrixFromDistances([][]int{
			{0, 15000, 5000, 10000},
			{15000, 0, 12000, 7000},
			{5000, 12000, 0, 6000},
			{10000, 7000, 6000, 0},
		})
		points := makePoints(t, 3)

		result, err := services.NearestNeighborSequence(matrix, points)
		require.NoError(t, err)
		require.Len(t, result.Stops, 3)
		assert.Equal(t, route.AlgorithmNearestNeighbor, result.Algorithm)
		assert.Empty(t, result.Dropped)

		assert.Equal(t, 1, result.Stops[0].PointIndex)
		assert.Equal(t, 2, result.Stops[1].PointIndex)
		assert.Equal(t, 0, result.Stops[2].PointIndex)

		assert.Equal(t, 5000, result.Stops[0].Leg.DistanceM)
		assert.Equal(t, 6000, result.Stops[1].Leg.DistanceM)
		assert.Equal(t, 7000, result.Stops[2].Leg.DistanceM)
	})

	t.Run("breaks_ties_by_input_order", func(t *testing.T) {
		matrix := matrixFromDistances([][]int{
			{0, 5000, 5000},
			{5000, 0, 3000},
			{5000, 3000, 0},
		})
		points := makePoints(t, 2)

		result, err := services.NearestNeighborSequence(matrix, points)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Stops[0].PointIndex)
		assert.Equal(t, 1, result.Stops[1].PointIndex)
	})

	t.Run("deterministic", func(t *testing.T) {
		matrix := matrixFromDistances([][]int{
			{0, 8000, 8000, 2000},
			{8000, 0, 1000, 9000},
			{8000, 1000, 0, 9000},
			{2000, 9000, 9000, 0},
		})
		points := makePoints(t, 3)

		first, err := services.NearestNeighborSequence(matrix, points)
		require.NoError(t, err)
		second, err := services.NearestNeighborSequence(matrix, points)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects_undersized_matrix", func(t *testing.T) {
		matrix := kernel.NewCostMatrix(2)
		points := makePoints(t, 3)

		_, err := services.NearestNeighborSequence(matrix, points)
		assert.Error(t, err)
	})

	t.Run("empty_points", func(t *testing.T) {
		matrix := kernel.NewCostMatrix(1)

		result, err := services.NearestNeighborSequence(matrix, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Stops)
	})
}
