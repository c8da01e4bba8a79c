package commands

import (
	"context"
	"log/slog"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/core/ports"
)

// ReorderStopsCommandHandler re-sequences a route's stops and refreshes the
// persisted geometry for the new visit order. ETAs are intentionally left
// untouched: a manual reorder is trusted to fix arrival times out-of-band.
type ReorderStopsCommandHandler struct {
	uowFactory RouteUoWFactory
	orderRepo  ports.OrderRepository
	resolver   ports.AddressResolver
	oracle     ports.DistanceOracle
	depot      kernel.GeoPoint
	logger     *slog.Logger
}

// NewReorderStopsCommandHandler creates a handler for stop reordering.
func NewReorderStopsCommandHandler(
	uowFactory RouteUoWFactory,
	orderRepo ports.OrderRepository,
	resolver ports.AddressResolver,
	oracle ports.DistanceOracle,
	depot kernel.GeoPoint,
	logger *slog.Logger,
) ReorderStopsCommandHandler {
	return ReorderStopsCommandHandler{
		uowFactory: uowFactory,
		orderRepo:  orderRepo,
		resolver:   resolver,
		oracle:     oracle,
		depot:      depot,
		logger:     logger.With("component", "reorder_stops_handler"),
	}
}

// Handle processes the stop reordering command.
func (h ReorderStopsCommandHandler) Handle(ctx context.Context, command ReorderStopsCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()

	aggregate, err := routeRepo.Get(ctx, command.RouteID())
	if err != nil {
		return err
	}

	if err := aggregate.Reorder(command.OrderIDs()); err != nil {
		return err
	}

	h.refreshGeometry(ctx, aggregate)

	if err := routeRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "route stops reordered",
		"route_id", aggregate.ID().String(),
		"stops", len(aggregate.Stops()))
	return nil
}

// refreshGeometry recomputes the polyline for the new stop order. Address
// lookups hit the geocode cache populated at planning time. When geometry
// cannot be obtained the stale polyline is removed rather than kept.
func (h ReorderStopsCommandHandler) refreshGeometry(ctx context.Context, aggregate *route.Route) {
	waypoints, ok := h.waypointsFor(ctx, aggregate)
	if ok && len(waypoints) >= 2 {
		if vertices, obtained := h.oracle.Geometry(ctx, waypoints); obtained {
			if polyline, err := route.NewPolyline(vertices); err == nil {
				if err := aggregate.AttachPolyline(polyline); err == nil {
					return
				}
			}
		}
	}

	h.logger.WarnContext(ctx, "geometry unavailable after reorder, removing stale polyline",
		"route_id", aggregate.ID().String())
	aggregate.RemovePolyline()
}

func (h ReorderStopsCommandHandler) waypointsFor(
	ctx context.Context,
	aggregate *route.Route,
) ([]kernel.GeoPoint, bool) {
	stops := aggregate.Stops()
	orderIDs := make([]kernel.UUID, 0, len(stops))
	for _, s := range stops {
		orderIDs = append(orderIDs, s.OrderID())
	}

	orders, err := h.orderRepo.GetByIDs(ctx, orderIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load orders for geometry refresh", "error", err)
		return nil, false
	}

	addressByOrder := make(map[kernel.UUID]string, len(orders))
	for _, o := range orders {
		addressByOrder[o.ID()] = o.Address()
	}

	waypoints := make([]kernel.GeoPoint, 0, len(stops)+1)
	waypoints = append(waypoints, h.depot)
	for _, s := range stops {
		address, found := addressByOrder[s.OrderID()]
		if !found {
			return nil, false
		}
		point, _, resolved := h.resolver.Resolve(ctx, address)
		if !resolved {
			return nil, false
		}
		waypoints = append(waypoints, point)
	}
	return waypoints, true
}
