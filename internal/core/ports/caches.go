package ports

import (
	"context"

	"routing/internal/core/domain/model/kernel"
)

// CachedCoordinate is one geocode cache row: the first non-empty provider
// result for a normalized address, keyed by the address hash. Entries
// never expire; addresses are treated as static reference data.
type CachedCoordinate struct {
	AddressHash string
	Point       kernel.GeoPoint
	Provider    string
}

// GeocodeCache is the persistent address-to-coordinate cache shared by all
// routing calls. Reads are concurrent; inserts are best-effort. Duplicate
// writes for an identical key carry identical values, so last-write-wins
// is harmless.
type GeocodeCache interface {
	// Get returns the cached coordinate for an address hash, or nil on miss.
	Get(ctx context.Context, addressHash string) (*CachedCoordinate, error)

	// Put persists a cache entry. Writing an existing key is a no-op.
	Put(ctx context.Context, entry CachedCoordinate) error
}

// CachedLeg is one distance cache row, keyed by the ordered
// (origin-hash, destination-hash) pair. Directional: the reverse pair is a
// separate row. Entries never expire.
type CachedLeg struct {
	OriginHash      string
	DestinationHash string
	Leg             kernel.Leg
	Provider        string
}

// DistanceCache is the persistent per-pair travel-cost cache.
type DistanceCache interface {
	// Get returns the cached leg for a directed pair, or nil on miss.
	Get(ctx context.Context, originHash string, destinationHash string) (*CachedLeg, error)

	// Put persists a cache entry. Writing an existing key is a no-op.
	Put(ctx context.Context, entry CachedLeg) error
}
