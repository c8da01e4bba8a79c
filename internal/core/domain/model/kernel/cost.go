package kernel

// Leg is the travel cost of one directed origin to destination movement:
// road distance in meters and travel duration in seconds. Legs are
// directional; (A,B) and (B,A) are distinct values on a real road network.
type Leg struct {
	DistanceM int
	DurationS int
}

// CostMatrix holds pairwise travel costs for an indexed point set.
// Legs[i][j] is the cost of traveling from point i to point j; the
// diagonal is zero.
type CostMatrix struct {
	Legs [][]Leg
}

// NewCostMatrix allocates a zeroed n×n matrix.
func NewCostMatrix(n int) CostMatrix {
	legs := make([][]Leg, n)
	for i := range legs {
		legs[i] = make([]Leg, n)
	}
	return CostMatrix{Legs: legs}
}

// Size returns the number of indexed points.
func (m CostMatrix) Size() int {
	return len(m.Legs)
}

// At returns the leg from point i to point j.
func (m CostMatrix) At(i, j int) Leg {
	return m.Legs[i][j]
}

// Set stores the leg from point i to point j.
func (m *CostMatrix) Set(i, j int, leg Leg) {
	m.Legs[i][j] = leg
}
