package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/order"
	"routing/internal/core/domain/model/route"
	"routing/internal/core/domain/model/vehicle"
	"routing/internal/core/domain/services"
	"routing/internal/core/ports"
	"routing/internal/pkg/errs"
)

var (
	// ErrNoRoutableOrders is returned when zero orders survive address
	// resolution. Nothing is persisted in that case.
	ErrNoRoutableOrders = errors.New("no routable orders: every address failed to resolve")

	// ErrVehicleCapacityExceeded is returned when the assigned vehicle
	// cannot carry the total demand and the selected algorithm does not
	// drop stops.
	ErrVehicleCapacityExceeded = errors.New("total order demand exceeds vehicle capacity")
)

// CreateRouteConfig carries the planning parameters that are deployment
// configuration rather than per-request input.
type CreateRouteConfig struct {
	// Depot is the coordinate every route starts from.
	Depot kernel.GeoPoint

	// ServiceTime is the fixed per-stop handling time added to each ETA.
	ServiceTime time.Duration

	// WorkdayStart is the default departure offset from midnight on the
	// route date, used when the command carries no start time.
	WorkdayStart time.Duration

	// MaxStops caps the number of orders accepted per route.
	MaxStops int

	// SearchBudget bounds the CVRP local search wall-clock time.
	SearchBudget time.Duration
}

// CreateRouteCommandHandler plans a delivery route end to end: resolves
// order addresses, builds the travel-cost matrix, runs the selected
// sequencing strategy, computes ETAs, and persists the route with its
// stops and optional polyline inside a single transaction.
//
// Unresolvable addresses and provider failures degrade the plan (order
// excluded, unoptimized order, missing geometry) instead of failing it;
// only ErrNoRoutableOrders and input validation errors reach the caller.
type CreateRouteCommandHandler struct {
	uowFactory  RouteUoWFactory
	orderRepo   ports.OrderRepository
	vehicleRepo ports.VehicleRepository
	resolver    ports.AddressResolver
	oracle      ports.DistanceOracle
	cfg         CreateRouteConfig
	logger      *slog.Logger
}

// NewCreateRouteCommandHandler creates a handler for route planning.
func NewCreateRouteCommandHandler(
	uowFactory RouteUoWFactory,
	orderRepo ports.OrderRepository,
	vehicleRepo ports.VehicleRepository,
	resolver ports.AddressResolver,
	oracle ports.DistanceOracle,
	cfg CreateRouteConfig,
	logger *slog.Logger,
) CreateRouteCommandHandler {
	if cfg.SearchBudget <= 0 {
		cfg.SearchBudget = services.DefaultSearchBudget
	}
	return CreateRouteCommandHandler{
		uowFactory:  uowFactory,
		orderRepo:   orderRepo,
		vehicleRepo: vehicleRepo,
		resolver:    resolver,
		oracle:      oracle,
		cfg:         cfg,
		logger:      logger.With("component", "create_route_handler"),
	}
}

// Handle processes the route planning command.
func (h CreateRouteCommandHandler) Handle(ctx context.Context, command CreateRouteCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	if h.cfg.MaxStops > 0 && len(command.OrderIDs()) > h.cfg.MaxStops {
		return errs.NewValueIsOutOfRangeError("order_ids", len(command.OrderIDs()), 1, h.cfg.MaxStops)
	}

	orders, err := h.orderRepo.GetByIDs(ctx, command.OrderIDs())
	if err != nil {
		return err
	}
	orders = ordersInRequestOrder(command.OrderIDs(), orders)

	points := h.resolveOrders(ctx, orders)
	if len(points) == 0 {
		return ErrNoRoutableOrders
	}

	veh, err := h.assignedVehicle(ctx, command.VehicleID())
	if err != nil {
		return err
	}

	startTime := command.StartTime()
	if startTime.IsZero() {
		startTime = command.Date().Add(h.cfg.WorkdayStart)
	}

	result := h.sequence(ctx, command, points, veh, startTime)

	if err := h.checkCapacity(result, points, veh); err != nil {
		return err
	}

	aggregate, err := h.buildRoute(ctx, command, result, points, startTime)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.RouteRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "route planned",
		"route_id", aggregate.ID().String(),
		"algorithm", aggregate.Algorithm().String(),
		"stops", len(aggregate.Stops()),
		"dropped", len(result.Dropped))
	return nil
}

// ordersInRequestOrder re-sorts fetched orders to the command's id order.
// The repository returns rows in storage order; sequencing input must
// follow the caller-supplied order instead.
func ordersInRequestOrder(ids []kernel.UUID, orders []*order.Order) []*order.Order {
	byID := make(map[kernel.UUID]*order.Order, len(orders))
	for _, o := range orders {
		byID[o.ID()] = o
	}
	sorted := make([]*order.Order, 0, len(orders))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			sorted = append(sorted, o)
		}
	}
	return sorted
}

// resolveOrders geocodes each order's address. Orders with unresolvable
// addresses are excluded and logged, never fatal.
func (h CreateRouteCommandHandler) resolveOrders(
	ctx context.Context,
	orders []*order.Order,
) []services.DemandPoint {
	points := make([]services.DemandPoint, 0, len(orders))
	for _, o := range orders {
		point, provider, ok := h.resolver.Resolve(ctx, o.Address())
		if !ok {
			h.logger.WarnContext(ctx, "order excluded: address not resolvable",
				"order_id", o.ID().String(),
				"address", o.Address())
			continue
		}
		demand := o.Demand()
		points = append(points, services.DemandPoint{
			OrderID:  o.ID(),
			Point:    point,
			MassKg:   demand.MassKg,
			VolumeM3: demand.VolumeM3,
		})
		h.logger.DebugContext(ctx, "order address resolved",
			"order_id", o.ID().String(),
			"provider", provider)
	}
	return points
}

func (h CreateRouteCommandHandler) assignedVehicle(
	ctx context.Context,
	vehicleID *kernel.UUID,
) (*vehicle.Vehicle, error) {
	if vehicleID == nil {
		return nil, nil //nolint:nilnil //absence of a vehicle is a valid state
	}
	return h.vehicleRepo.Get(ctx, *vehicleID)
}

// sequence builds the cost matrix and runs the selected strategy. Matrix
// failure degrades to the caller-supplied order over a zero matrix; any
// strategy error degrades to nearest-neighbor, then to manual order.
func (h CreateRouteCommandHandler) sequence(
	ctx context.Context,
	command CreateRouteCommand,
	points []services.DemandPoint,
	veh *vehicle.Vehicle,
	startTime time.Time,
) services.SequenceResult {
	matrix, ok := h.oracle.Matrix(ctx, h.matrixPoints(points))
	if !ok {
		h.logger.WarnContext(ctx, "cost matrix unavailable, keeping caller order")
		return h.manualFallback(ctx, points)
	}

	algorithm := services.SelectAlgorithm(command.Algorithm(), len(points), h.oracle.SupportsOptimization())

	var (
		result services.SequenceResult
		err    error
	)
	switch algorithm {
	case route.AlgorithmManual:
		result, err = services.ManualSequence(matrix, points)
	case route.AlgorithmExternal:
		result, err = h.externalSequence(ctx, matrix, points)
	case route.AlgorithmCVRP:
		result, err = services.SolveCVRP(matrix, points, services.CVRPConfig{
			Capacity:     vehicleCapacity(veh),
			ServiceTime:  h.cfg.ServiceTime,
			StartTime:    startTime,
			SearchBudget: h.cfg.SearchBudget,
		})
	default:
		result, err = services.NearestNeighborSequence(matrix, points)
	}
	if err == nil {
		return result
	}

	h.logger.WarnContext(ctx, "sequencing failed, falling back to nearest-neighbor",
		"algorithm", algorithm.String(),
		"error", err)
	result, err = services.NearestNeighborSequence(matrix, points)
	if err != nil {
		return h.manualFallback(ctx, points)
	}
	return result
}

// externalSequence delegates sequencing to the provider optimizer.
// An unavailable or inconsistent result falls back to nearest-neighbor.
func (h CreateRouteCommandHandler) externalSequence(
	ctx context.Context,
	matrix kernel.CostMatrix,
	points []services.DemandPoint,
) (services.SequenceResult, error) {
	coords := make([]kernel.GeoPoint, len(points))
	for i, p := range points {
		coords[i] = p.Point
	}

	permutation, ok := h.oracle.Optimize(ctx, h.cfg.Depot, coords)
	if ok {
		result, err := services.SequenceFromPermutation(matrix, points, permutation)
		if err == nil {
			return result, nil
		}
		h.logger.WarnContext(ctx, "external optimizer returned inconsistent permutation",
			"error", err)
	}
	return services.NearestNeighborSequence(matrix, points)
}

// manualFallback preserves the caller order over a zero-cost matrix, the
// last-resort plan when no travel costs can be obtained.
func (h CreateRouteCommandHandler) manualFallback(
	ctx context.Context,
	points []services.DemandPoint,
) services.SequenceResult {
	zero := kernel.NewCostMatrix(len(points) + 1)
	result, err := services.ManualSequence(zero, points)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual fallback failed", "error", err)
		return services.SequenceResult{Algorithm: route.AlgorithmManual}
	}
	return result
}

// checkCapacity enforces the capacity invariant for strategies that never
// drop stops. The CVRP solver handles capacity itself by dropping.
func (h CreateRouteCommandHandler) checkCapacity(
	result services.SequenceResult,
	points []services.DemandPoint,
	veh *vehicle.Vehicle,
) error {
	if veh == nil || result.Algorithm == route.AlgorithmCVRP {
		return nil
	}
	var total order.Demand
	for _, p := range points {
		total = total.Add(order.Demand{MassKg: p.MassKg, VolumeM3: p.VolumeM3})
	}
	if !veh.CanCarry(total) {
		return ErrVehicleCapacityExceeded
	}
	return nil
}

// buildRoute materializes the route aggregate: stops with cumulative ETAs
// and, best effort, the road-following polyline.
func (h CreateRouteCommandHandler) buildRoute(
	ctx context.Context,
	command CreateRouteCommand,
	result services.SequenceResult,
	points []services.DemandPoint,
	startTime time.Time,
) (*route.Route, error) {
	aggregate, err := route.NewRoute(
		command.RouteID(),
		command.Date(),
		result.Algorithm,
		command.VehicleID(),
		command.DriverID(),
	)
	if err != nil {
		return nil, err
	}

	current := startTime
	waypoints := make([]kernel.GeoPoint, 0, len(result.Stops)+1)
	waypoints = append(waypoints, h.cfg.Depot)

	for _, stop := range result.Stops {
		current = current.Add(time.Duration(stop.Leg.DurationS) * time.Second)
		if _, err := aggregate.AddStop(
			kernel.NewUUID(),
			stop.OrderID,
			current,
			stop.Leg.DistanceM,
			stop.Leg.DurationS,
		); err != nil {
			return nil, err
		}
		current = current.Add(h.cfg.ServiceTime)
		waypoints = append(waypoints, points[stop.PointIndex].Point)
	}

	for _, dropped := range result.Dropped {
		h.logger.WarnContext(ctx, "order dropped by solver",
			"order_id", dropped.String(),
			"route_id", aggregate.ID().String())
	}

	h.attachGeometry(ctx, aggregate, waypoints)
	return aggregate, nil
}

// attachGeometry requests road geometry for the ordered waypoints. The
// route persists without a polyline when every provider fails.
func (h CreateRouteCommandHandler) attachGeometry(
	ctx context.Context,
	aggregate *route.Route,
	waypoints []kernel.GeoPoint,
) {
	if len(waypoints) < 2 {
		return
	}
	vertices, ok := h.oracle.Geometry(ctx, waypoints)
	if !ok {
		h.logger.WarnContext(ctx, "route geometry unavailable",
			"route_id", aggregate.ID().String())
		return
	}
	polyline, err := route.NewPolyline(vertices)
	if err != nil {
		return
	}
	if err := aggregate.AttachPolyline(polyline); err != nil {
		h.logger.WarnContext(ctx, "failed to attach polyline",
			"route_id", aggregate.ID().String(),
			"error", err)
	}
}

func (h CreateRouteCommandHandler) matrixPoints(points []services.DemandPoint) []kernel.GeoPoint {
	coords := make([]kernel.GeoPoint, 0, len(points)+1)
	coords = append(coords, h.cfg.Depot)
	for _, p := range points {
		coords = append(coords, p.Point)
	}
	return coords
}

func vehicleCapacity(veh *vehicle.Vehicle) services.VehicleCapacity {
	if veh == nil {
		return services.VehicleCapacity{}
	}
	return services.VehicleCapacity{
		MassKg:   veh.CapacityKg(),
		VolumeM3: veh.CapacityM3(),
	}
}
