package services

import (
	"math"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
)

// DefaultSearchBudget bounds the CVRP local search. Construction always
// runs to completion; improvement stops once the budget is spent.
const DefaultSearchBudget = 30 * time.Second

// CVRPConfig parameterizes the capacitated solver.
type CVRPConfig struct {
	// Capacity bounds the route load. The zero value lifts both limits.
	Capacity VehicleCapacity

	// ServiceTime is spent at every stop before departing to the next one.
	ServiceTime time.Duration

	// StartTime is when the vehicle leaves the depot. Points without an
	// explicit window must be reachable within one day of it.
	StartTime time.Time

	// SearchBudget caps local search wall time. Zero means DefaultSearchBudget.
	SearchBudget time.Duration
}

// SolveCVRP orders demand points under vehicle capacity and per-point
// time windows. Points that cannot be feasibly inserted anywhere are
// dropped rather than failing the whole route.
//
// The solver builds an initial tour by cheapest feasible insertion, then
// improves it with 2-opt segment reversals and single-point relocations
// until no improving move remains or the search budget is spent, and
// finally retries the dropped points against the improved tour. All loops
// iterate in input order with strict improvement, so the result is
// deterministic.
//
// If no point can be inserted at all, the solver falls back to the
// nearest-neighbor ordering so the caller still gets a routable sequence.
//
// Parameters:
//   - matrix: travel costs with row 0 as the depot and row i+1 as points[i]
//   - points: demand points to order
//   - cfg: capacity, timing and budget parameters
//
// Returns:
//   - SequenceResult: the ordering plus the dropped order IDs
//   - error: when the matrix does not cover all points
func SolveCVRP(matrix kernel.CostMatrix, points []DemandPoint, cfg CVRPConfig) (SequenceResult, error) {
	if err := checkMatrix(matrix, len(points)); err != nil {
		return SequenceResult{}, err
	}

	budget := cfg.SearchBudget
	if budget <= 0 {
		budget = DefaultSearchBudget
	}
	deadline := time.Now().Add(budget)

	state := newCVRPState(matrix, points, cfg)

	tour, dropped := state.constructGreedy(allIndices(len(points)))

	if len(tour) == 0 && len(points) > 0 {
		return NearestNeighborSequence(matrix, points)
	}

	tour = state.improve(tour, deadline)
	tour, dropped = state.reinsert(tour, dropped)

	droppedIDs := make([]kernel.UUID, 0, len(dropped))
	for _, idx := range dropped {
		droppedIDs = append(droppedIDs, points[idx].OrderID)
	}

	return SequenceResult{
		Stops:     stopsFromTour(matrix, points, tour),
		Dropped:   droppedIDs,
		Algorithm: route.AlgorithmCVRP,
	}, nil
}

// cvrpState carries the solver inputs in fixed-point units. Mass is
// tracked in grams and volume in cubic centimeters so feasibility checks
// never accumulate floating point error.
type cvrpState struct {
	matrix   kernel.CostMatrix
	points   []DemandPoint
	massG    []int64
	volumeCC []int64
	capG     int64
	capCC    int64
	service  time.Duration
	start    time.Time
	dayEnd   time.Time
}

func newCVRPState(matrix kernel.CostMatrix, points []DemandPoint, cfg CVRPConfig) *cvrpState {
	s := &cvrpState{
		matrix:   matrix,
		points:   points,
		massG:    make([]int64, len(points)),
		volumeCC: make([]int64, len(points)),
		capG:     math.MaxInt64,
		capCC:    math.MaxInt64,
		service:  cfg.ServiceTime,
		start:    cfg.StartTime,
		dayEnd:   cfg.StartTime.Add(24 * time.Hour),
	}

	if cfg.Capacity.MassKg > 0 {
		s.capG = toGrams(cfg.Capacity.MassKg)
	}
	if cfg.Capacity.VolumeM3 > 0 {
		s.capCC = toCubicCm(cfg.Capacity.VolumeM3)
	}
	for i, p := range points {
		s.massG[i] = toGrams(p.MassKg)
		s.volumeCC[i] = toCubicCm(p.VolumeM3)
	}

	return s
}

func toGrams(kg float64) int64 {
	return int64(math.Round(kg * 1000))
}

func toCubicCm(m3 float64) int64 {
	return int64(math.Round(m3 * 1e6))
}

// window returns the effective delivery window of a point, substituting
// the planning day for zero bounds.
func (s *cvrpState) window(idx int) (time.Time, time.Time) {
	p := s.points[idx]
	ws, we := p.WindowStart, p.WindowEnd
	if ws.IsZero() {
		ws = s.start
	}
	if we.IsZero() {
		we = s.dayEnd
	}
	return ws, we
}

// feasible simulates the tour from the depot, checking the load limits
// and that every point is reached before its window closes. Arriving
// early means waiting for the window to open.
func (s *cvrpState) feasible(tour []int) bool {
	var massG, volumeCC int64
	t := s.start
	prev := 0

	for _, idx := range tour {
		massG += s.massG[idx]
		volumeCC += s.volumeCC[idx]
		if massG > s.capG || volumeCC > s.capCC {
			return false
		}

		t = t.Add(time.Duration(s.matrix.At(prev, idx+1).DurationS) * time.Second)
		ws, we := s.window(idx)
		if t.Before(ws) {
			t = ws
		}
		if t.After(we) {
			return false
		}
		t = t.Add(s.service)
		prev = idx + 1
	}

	return true
}

// travelS is the total driving time of a tour in seconds. The route is
// open: it ends at the last stop without returning to the depot.
func (s *cvrpState) travelS(tour []int) int {
	total := 0
	prev := 0
	for _, idx := range tour {
		total += s.matrix.At(prev, idx+1).DurationS
		prev = idx + 1
	}
	return total
}

// constructGreedy builds a tour by repeatedly inserting the point whose
// cheapest feasible insertion costs the least extra driving time. Points
// with no feasible position anywhere are returned as dropped.
func (s *cvrpState) constructGreedy(candidates []int) (tour []int, dropped []int) {
	remaining := append([]int(nil), candidates...)

	for len(remaining) > 0 {
		bestDelta := math.MaxInt
		bestPoint := -1
		bestPos := -1
		base := s.travelS(tour)

		for ri, idx := range remaining {
			for pos := 0; pos <= len(tour); pos++ {
				cand := insertAt(tour, pos, idx)
				if !s.feasible(cand) {
					continue
				}
				if delta := s.travelS(cand) - base; delta < bestDelta {
					bestDelta = delta
					bestPoint = ri
					bestPos = pos
				}
			}
		}

		if bestPoint == -1 {
			break
		}

		tour = insertAt(tour, bestPos, remaining[bestPoint])
		remaining = append(remaining[:bestPoint], remaining[bestPoint+1:]...)
	}

	return tour, remaining
}

// improve runs 2-opt reversals and single-point relocations to a local
// optimum, first improvement, respecting the deadline. Every accepted
// move must keep the tour feasible.
func (s *cvrpState) improve(tour []int, deadline time.Time) []int {
	improved := true
	for improved && time.Now().Before(deadline) {
		improved = false
		cost := s.travelS(tour)

		for i := 0; i < len(tour)-1; i++ {
			for j := i + 1; j < len(tour); j++ {
				cand := reverseSegment(tour, i, j)
				if s.travelS(cand) < cost && s.feasible(cand) {
					tour = cand
					cost = s.travelS(tour)
					improved = true
				}
			}
		}

		for i := 0; i < len(tour); i++ {
			for pos := 0; pos <= len(tour)-1; pos++ {
				if pos == i {
					continue
				}
				cand := relocate(tour, i, pos)
				if s.travelS(cand) < cost && s.feasible(cand) {
					tour = cand
					cost = s.travelS(tour)
					improved = true
				}
			}
		}
	}
	return tour
}

// reinsert retries dropped points against the improved tour.
func (s *cvrpState) reinsert(tour []int, dropped []int) ([]int, []int) {
	if len(dropped) == 0 {
		return tour, dropped
	}

	remaining := append([]int(nil), dropped...)
	for {
		inserted := false
		for ri, idx := range remaining {
			bestDelta := math.MaxInt
			bestPos := -1
			base := s.travelS(tour)
			for pos := 0; pos <= len(tour); pos++ {
				cand := insertAt(tour, pos, idx)
				if !s.feasible(cand) {
					continue
				}
				if delta := s.travelS(cand) - base; delta < bestDelta {
					bestDelta = delta
					bestPos = pos
				}
			}
			if bestPos >= 0 {
				tour = insertAt(tour, bestPos, idx)
				remaining = append(remaining[:ri], remaining[ri+1:]...)
				inserted = true
				break
			}
		}
		if !inserted {
			break
		}
	}

	return tour, remaining
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func insertAt(tour []int, pos, idx int) []int {
	cand := make([]int, 0, len(tour)+1)
	cand = append(cand, tour[:pos]...)
	cand = append(cand, idx)
	cand = append(cand, tour[pos:]...)
	return cand
}

func reverseSegment(tour []int, i, j int) []int {
	cand := append([]int(nil), tour...)
	for lo, hi := i, j; lo < hi; lo, hi = lo+1, hi-1 {
		cand[lo], cand[hi] = cand[hi], cand[lo]
	}
	return cand
}

func relocate(tour []int, from, to int) []int {
	cand := make([]int, 0, len(tour))
	cand = append(cand, tour[:from]...)
	cand = append(cand, tour[from+1:]...)
	moved := tour[from]
	out := make([]int, 0, len(tour))
	out = append(out, cand[:to]...)
	out = append(out, moved)
	out = append(out, cand[to:]...)
	return out
}
