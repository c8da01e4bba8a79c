package geo

import (
	"context"
	"log/slog"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
)

// CachedDistanceOracle implements ports.DistanceOracle: a persistent
// per-pair cache in front of the provider chain. Matrices are served from
// the cache when complete, batched through a matrix-capable provider when
// not, and assembled pairwise as the last resort.
type CachedDistanceOracle struct {
	chain  *Chain
	cache  ports.DistanceCache
	logger *slog.Logger
}

func NewCachedDistanceOracle(chain *Chain, cache ports.DistanceCache, logger *slog.Logger) *CachedDistanceOracle {
	return &CachedDistanceOracle{
		chain:  chain,
		cache:  cache,
		logger: logger.With("component", "distance_oracle"),
	}
}

func (o *CachedDistanceOracle) Pair(ctx context.Context, origin, destination kernel.GeoPoint) (kernel.Leg, bool) {
	originHash, destHash := PointHash(origin), PointHash(destination)

	cached, err := o.cache.Get(ctx, originHash, destHash)
	if err != nil {
		o.logger.WarnContext(ctx, "Distance cache read failed", "error", err)
	}
	if cached != nil {
		return cached.Leg, true
	}

	leg, provider, err := o.chain.Pair(ctx, origin, destination)
	if err != nil {
		o.logger.WarnContext(ctx, "Pair could not be resolved", "error", err)
		return kernel.Leg{}, false
	}

	o.putLeg(ctx, ports.CachedLeg{
		OriginHash:      originHash,
		DestinationHash: destHash,
		Leg:             leg,
		Provider:        provider,
	})

	return leg, true
}

func (o *CachedDistanceOracle) Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, bool) {
	n := len(points)
	matrix := kernel.NewCostMatrix(n)
	if n == 0 {
		return matrix, true
	}

	hashes := make([]string, n)
	for i, pt := range points {
		hashes[i] = PointHash(pt)
	}

	if o.fillFromCache(ctx, &matrix, hashes) {
		return matrix, true
	}

	if batched, provider, err := o.chain.Matrix(ctx, points); err == nil {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				o.putLeg(ctx, ports.CachedLeg{
					OriginHash:      hashes[i],
					DestinationHash: hashes[j],
					Leg:             batched.At(i, j),
					Provider:        provider,
				})
			}
		}
		return batched, true
	}

	// No batched matrix available; assemble pairwise through Pair, which
	// consults and feeds the cache itself.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			leg, ok := o.Pair(ctx, points[i], points[j])
			if !ok {
				return kernel.CostMatrix{}, false
			}
			matrix.Set(i, j, leg)
		}
	}
	return matrix, true
}

func (o *CachedDistanceOracle) Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, bool) {
	points, err := o.chain.Geometry(ctx, waypoints)
	if err != nil {
		o.logger.WarnContext(ctx, "Geometry could not be resolved", "error", err)
		return nil, false
	}
	return points, true
}

func (o *CachedDistanceOracle) Optimize(ctx context.Context, depot kernel.GeoPoint, points []kernel.GeoPoint) ([]int, bool) {
	permutation, err := o.chain.Optimize(ctx, depot, points)
	if err != nil {
		o.logger.WarnContext(ctx, "Optimization could not be delegated", "error", err)
		return nil, false
	}
	return permutation, true
}

func (o *CachedDistanceOracle) SupportsOptimization() bool {
	return o.chain.SupportsOptimization()
}

// fillFromCache loads every off-diagonal pair from the cache into the
// matrix, reporting whether the matrix is complete.
func (o *CachedDistanceOracle) fillFromCache(ctx context.Context, matrix *kernel.CostMatrix, hashes []string) bool {
	complete := true
	for i := range hashes {
		for j := range hashes {
			if i == j {
				continue
			}
			cached, err := o.cache.Get(ctx, hashes[i], hashes[j])
			if err != nil {
				o.logger.WarnContext(ctx, "Distance cache read failed", "error", err)
				return false
			}
			if cached == nil {
				complete = false
				continue
			}
			matrix.Set(i, j, cached.Leg)
		}
	}
	return complete
}

func (o *CachedDistanceOracle) putLeg(ctx context.Context, entry ports.CachedLeg) {
	if err := o.cache.Put(ctx, entry); err != nil {
		o.logger.WarnContext(ctx, "Distance cache write failed", "error", err)
	}
}
