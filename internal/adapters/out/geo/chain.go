package geo

import (
	"context"
	"log/slog"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
)

// Chain is an ordered list of geo providers. Every call walks the list
// and returns the first success; a provider failure is logged and the
// next provider is tried. The order is configuration, the first entry
// being the preferred provider.
type Chain struct {
	providers []ports.GeoProvider
	logger    *slog.Logger
}

func NewChain(providers []ports.GeoProvider, logger *slog.Logger) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.With("component", "geo_chain"),
	}
}

// Resolve geocodes via the first provider that answers, reporting which
// one did.
func (c *Chain) Resolve(ctx context.Context, address string) (kernel.GeoPoint, string, error) {
	var lastErr error = ports.ErrNoResult
	for _, p := range c.providers {
		point, err := p.Resolve(ctx, address)
		if err == nil {
			return point, p.Name(), nil
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Geocode failed, trying next provider", "provider", p.Name(), "error", err)
	}
	return kernel.GeoPoint{}, "", lastErr
}

// Pair returns the travel cost from the first provider that answers.
func (c *Chain) Pair(ctx context.Context, origin, destination kernel.GeoPoint) (kernel.Leg, string, error) {
	var lastErr error = ports.ErrNoResult
	for _, p := range c.providers {
		leg, err := p.Pair(ctx, origin, destination)
		if err == nil {
			return leg, p.Name(), nil
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Pair lookup failed, trying next provider", "provider", p.Name(), "error", err)
	}
	return kernel.Leg{}, "", lastErr
}

// Matrix returns a batched cost matrix from the first provider exposing
// the capability that answers. ports.ErrNoResult when none does.
func (c *Chain) Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, string, error) {
	var lastErr error = ports.ErrNoResult
	for _, p := range c.providers {
		mp, ok := p.(ports.MatrixProvider)
		if !ok {
			continue
		}
		matrix, err := mp.Matrix(ctx, points)
		if err == nil {
			return matrix, p.Name(), nil
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Matrix call failed, trying next provider", "provider", p.Name(), "error", err)
	}
	return kernel.CostMatrix{}, "", lastErr
}

// Geometry returns the route shape from the first provider that answers.
func (c *Chain) Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, error) {
	var lastErr error = ports.ErrNoResult
	for _, p := range c.providers {
		points, err := p.Geometry(ctx, waypoints)
		if err == nil {
			return points, nil
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Geometry call failed, trying next provider", "provider", p.Name(), "error", err)
	}
	return nil, lastErr
}

// Optimize delegates sequencing to the first provider exposing the
// capability that answers.
func (c *Chain) Optimize(ctx context.Context, depot kernel.GeoPoint, points []kernel.GeoPoint) ([]int, error) {
	var lastErr error = ports.ErrNoResult
	for _, p := range c.providers {
		opt, ok := p.(ports.RouteOptimizer)
		if !ok {
			continue
		}
		permutation, err := opt.Optimize(ctx, depot, points)
		if err == nil {
			return permutation, nil
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Optimization call failed, trying next provider", "provider", p.Name(), "error", err)
	}
	return nil, lastErr
}

// SupportsOptimization reports whether any chained provider can optimize.
func (c *Chain) SupportsOptimization() bool {
	for _, p := range c.providers {
		if _, ok := p.(ports.RouteOptimizer); ok {
			return true
		}
	}
	return false
}
