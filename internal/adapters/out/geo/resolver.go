package geo

import (
	"context"
	"log/slog"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
)

// CachedAddressResolver implements ports.AddressResolver: a persistent
// geocode cache in front of the provider chain. Resolution failures never
// escape as errors; ok=false tells the caller to exclude the address.
type CachedAddressResolver struct {
	chain  *Chain
	cache  ports.GeocodeCache
	logger *slog.Logger
}

func NewCachedAddressResolver(chain *Chain, cache ports.GeocodeCache, logger *slog.Logger) *CachedAddressResolver {
	return &CachedAddressResolver{
		chain:  chain,
		cache:  cache,
		logger: logger.With("component", "address_resolver"),
	}
}

func (r *CachedAddressResolver) Resolve(ctx context.Context, address string) (kernel.GeoPoint, string, bool) {
	hash := AddressHash(address)

	cached, err := r.cache.Get(ctx, hash)
	if err != nil {
		r.logger.WarnContext(ctx, "Geocode cache read failed", "error", err)
	}
	if cached != nil {
		return cached.Point, cached.Provider, true
	}

	point, provider, err := r.chain.Resolve(ctx, address)
	if err != nil {
		r.logger.WarnContext(ctx, "Address could not be resolved", "address_hash", hash, "error", err)
		return kernel.GeoPoint{}, "", false
	}

	// Cache writes are best effort; a failed insert only costs a repeat
	// provider call later.
	if err := r.cache.Put(ctx, ports.CachedCoordinate{
		AddressHash: hash,
		Point:       point,
		Provider:    provider,
	}); err != nil {
		r.logger.WarnContext(ctx, "Geocode cache write failed", "error", err)
	}

	return point, provider, true
}
