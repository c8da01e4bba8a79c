package queries

import (
	"context"
	"log/slog"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/core/ports"
)

// Unit of Work interfaces for the one query that writes: consuming a
// planned route transitions it to in progress, and that transition must
// persist atomically with the read.
type (
	// RouteUoW manages the transaction wrapping consumption.
	RouteUoW interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
		RouteRepository() ports.RouteRepository
	}

	// RouteUoWFactory creates new route unit of work instances.
	RouteUoWFactory interface {
		Create() RouteUoW
	}
)

// GetDriverStopsQueryHandler returns a route's ordered stop list for the
// driver and fires the planned-to-in-progress transition on first
// consumption. Repeated calls are idempotent reads.
type GetDriverStopsQueryHandler struct {
	uowFactory RouteUoWFactory
	orderRepo  ports.OrderRepository
	logger     *slog.Logger
}

// NewGetDriverStopsQueryHandler creates a handler for driver stop lists.
func NewGetDriverStopsQueryHandler(
	uowFactory RouteUoWFactory,
	orderRepo ports.OrderRepository,
	logger *slog.Logger,
) GetDriverStopsQueryHandler {
	return GetDriverStopsQueryHandler{
		uowFactory: uowFactory,
		orderRepo:  orderRepo,
		logger:     logger.With("component", "get_driver_stops_handler"),
	}
}

// Handle executes the driver stop list query.
func (h GetDriverStopsQueryHandler) Handle(
	ctx context.Context,
	query GetDriverStopsQuery,
) (GetDriverStopsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDriverStopsQueryResponse{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return GetDriverStopsQueryResponse{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()

	aggregate, err := routeRepo.Get(ctx, query.RouteID())
	if err != nil {
		return GetDriverStopsQueryResponse{}, err
	}

	if aggregate.Consume() {
		if err := routeRepo.Update(ctx, aggregate); err != nil {
			return GetDriverStopsQueryResponse{}, err
		}
		h.logger.InfoContext(ctx, "route consumed by driver",
			"route_id", aggregate.ID().String())
	}

	if err := uow.Commit(ctx); err != nil {
		return GetDriverStopsQueryResponse{}, err
	}

	addresses, err := h.orderAddresses(ctx, aggregate.Stops())
	if err != nil {
		return GetDriverStopsQueryResponse{}, err
	}

	response := GetDriverStopsQueryResponse{
		RouteID:     aggregate.ID(),
		RouteStatus: aggregate.Status().String(),
		Stops:       make([]DriverStopResponse, 0, len(aggregate.Stops())),
	}
	for _, s := range aggregate.Stops() {
		response.Stops = append(response.Stops, DriverStopResponse{
			StopID:   s.ID(),
			OrderID:  s.OrderID(),
			Sequence: s.Sequence(),
			Address:  addresses[s.OrderID()],
			ETA:      s.ETA(),
			Status:   s.Status().String(),
		})
	}

	return response, nil
}

func (h GetDriverStopsQueryHandler) orderAddresses(
	ctx context.Context,
	stops []*route.Stop,
) (map[kernel.UUID]string, error) {
	orderIDs := make([]kernel.UUID, 0, len(stops))
	for _, s := range stops {
		orderIDs = append(orderIDs, s.OrderID())
	}

	orders, err := h.orderRepo.GetByIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	addresses := make(map[kernel.UUID]string, len(orders))
	for _, o := range orders {
		addresses[o.ID()] = o.Address()
	}
	return addresses, nil
}
