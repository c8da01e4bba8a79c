package ports

import (
	"context"
	"errors"

	"routing/internal/core/domain/model/kernel"
)

// ErrNoResult is returned by a provider when the call succeeded but the
// backend found nothing usable (empty geocode result, unroutable pair).
// The fallback chain treats it exactly like a transport failure: try the
// next provider.
var ErrNoResult = errors.New("provider returned no result")

// GeoProvider is one external geo backend behind a single capability
// interface. Implementations exist for OSRM (+Nominatim), OpenRouteService,
// Google Maps, and TomTom. Every method is blocking I/O with a bounded
// timeout; implementations return errors freely. Converting failures into
// null results is the resolver/oracle boundary's job, not the provider's.
type GeoProvider interface {
	// Name returns the configuration key of the provider ("osrm", "ors",
	// "google", "tomtom"). Recorded in cache entries for provenance.
	Name() string

	// Resolve geocodes a free-form address into a coordinate.
	Resolve(ctx context.Context, address string) (kernel.GeoPoint, error)

	// Pair returns road distance and travel duration for one directed
	// origin to destination pair.
	Pair(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (kernel.Leg, error)

	// Geometry returns the road-following vertex list visiting the given
	// waypoints in order.
	Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, error)
}

// MatrixProvider is the optional capability of computing an N×N cost
// matrix in a single batched call. Providers without it fall back to
// pairwise Pair calls through the per-pair cache.
type MatrixProvider interface {
	Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, error)
}

// RouteOptimizer is the optional capability of delegating small-batch stop
// sequencing to the provider. Optimize returns a permutation of the input
// point indices (depot excluded); the caller validates the permutation and
// falls back to nearest-neighbor on any inconsistency.
type RouteOptimizer interface {
	Optimize(ctx context.Context, depot kernel.GeoPoint, points []kernel.GeoPoint) ([]int, error)
}
