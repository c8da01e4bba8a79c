package ports

import (
	"context"

	"routing/internal/core/domain/model/kernel"
)

// AddressResolver turns an address string into a coordinate, backed by the
// persistent geocode cache and the provider fallback chain. Provider
// failures never escape this boundary: ok=false means every provider
// failed or returned nothing, and the caller must exclude that order.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (point kernel.GeoPoint, provider string, ok bool)
}

// DistanceOracle answers travel-cost questions, backed by the persistent
// distance cache and the provider fallback chain. As with the resolver,
// remote failures are absorbed here: callers receive ok=false and degrade
// (skip optimization, omit geometry) instead of handling provider errors.
type DistanceOracle interface {
	// Pair returns the cost of one directed origin to destination pair.
	Pair(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (kernel.Leg, bool)

	// Matrix returns pairwise costs over the point set, batched into one
	// provider call where supported, else assembled pairwise via Pair.
	Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, bool)

	// Geometry returns the road-following vertex list for the ordered
	// waypoints, trying the configured provider then the default fallback.
	Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, bool)

	// Optimize delegates small-batch sequencing to the active provider
	// when it implements RouteOptimizer. ok=false when the capability is
	// missing or the call failed.
	Optimize(ctx context.Context, depot kernel.GeoPoint, points []kernel.GeoPoint) ([]int, bool)

	// SupportsOptimization reports whether the active provider chain can
	// serve Optimize at all, without issuing a call.
	SupportsOptimization() bool
}
