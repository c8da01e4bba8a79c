package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"routing/internal/core/application/usecases/commands"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/order"
	"routing/internal/core/domain/model/route"
	"routing/internal/core/domain/model/vehicle"
	"routing/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRouteRepository struct{ mock.Mock }

func (m *MockRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockRouteRepository) Update(ctx context.Context, aggregate *route.Route) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

func (m *MockRouteRepository) GetByStopID(ctx context.Context, stopID kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, stopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

type MockRouteUoW struct{ mock.Mock }

func (m *MockRouteUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRouteUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRouteUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRouteUoW) RouteRepository() ports.RouteRepository {
	args := m.Called()
	return args.Get(0).(ports.RouteRepository)
}

type MockRouteUoWFactory struct{ mock.Mock }

func (m *MockRouteUoWFactory) Create() commands.RouteUoW {
	args := m.Called()
	return args.Get(0).(commands.RouteUoW)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockVehicleRepository struct{ mock.Mock }

func (m *MockVehicleRepository) Get(ctx context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vehicle.Vehicle), args.Error(1)
}

type MockAddressResolver struct{ mock.Mock }

func (m *MockAddressResolver) Resolve(ctx context.Context, address string) (kernel.GeoPoint, string, bool) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.GeoPoint), args.String(1), args.Bool(2)
}

type MockDistanceOracle struct{ mock.Mock }

func (m *MockDistanceOracle) Pair(
	ctx context.Context,
	origin kernel.GeoPoint,
	destination kernel.GeoPoint,
) (kernel.Leg, bool) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(kernel.Leg), args.Bool(1)
}

func (m *MockDistanceOracle) Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, bool) {
	args := m.Called(ctx, points)
	return args.Get(0).(kernel.CostMatrix), args.Bool(1)
}

func (m *MockDistanceOracle) Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, bool) {
	args := m.Called(ctx, waypoints)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]kernel.GeoPoint), args.Bool(1)
}

func (m *MockDistanceOracle) Optimize(
	ctx context.Context,
	depot kernel.GeoPoint,
	points []kernel.GeoPoint,
) ([]int, bool) {
	args := m.Called(ctx, depot, points)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]int), args.Bool(1)
}

func (m *MockDistanceOracle) SupportsOptimization() bool {
	args := m.Called()
	return args.Bool(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustGeoPoint(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

func testOrder(t *testing.T, street string, massKg float64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), street, "Berlin", "10115", "DE",
		[]order.Line{order.NewLine(1, massKg, 0.01)})
	require.NoError(t, err)
	return o
}

// twoStopMatrix builds costs over [depot, p1, p2] where p1 is closer to
// the depot than p2.
func twoStopMatrix() kernel.CostMatrix {
	m := kernel.NewCostMatrix(3)
	m.Set(0, 1, kernel.Leg{DistanceM: 5000, DurationS: 600})
	m.Set(1, 0, kernel.Leg{DistanceM: 5000, DurationS: 600})
	m.Set(0, 2, kernel.Leg{DistanceM: 9000, DurationS: 900})
	m.Set(2, 0, kernel.Leg{DistanceM: 9000, DurationS: 900})
	m.Set(1, 2, kernel.Leg{DistanceM: 4000, DurationS: 300})
	m.Set(2, 1, kernel.Leg{DistanceM: 4000, DurationS: 300})
	return m
}

func testConfig(t *testing.T) commands.CreateRouteConfig {
	t.Helper()
	return commands.CreateRouteConfig{
		Depot:        mustGeoPoint(t, 52.52, 13.405),
		ServiceTime:  5 * time.Minute,
		WorkdayStart: 8 * time.Hour,
		MaxStops:     50,
		SearchBudget: time.Second,
	}
}

func TestCreateRouteCommandHandler_Handle_NearestNeighborSuccess(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	orderA := testOrder(t, "Torstr. 1", 10)
	orderB := testOrder(t, "Torstr. 2", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderA.ID(), orderB.ID()},
		nil, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	pointA := mustGeoPoint(t, 52.53, 13.40)
	pointB := mustGeoPoint(t, 52.54, 13.41)

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	routeRepo := new(MockRouteRepository)
	uow := new(MockRouteUoW)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderA, orderB}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(pointA, "osrm", true).Once()
	resolver.On("Resolve", ctx, orderB.Address()).Return(pointB, "osrm", true).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(twoStopMatrix(), true).Once()
	oracle.On("SupportsOptimization").Return(false).Once()
	oracle.On("Geometry", ctx, mock.Anything).
		Return([]kernel.GeoPoint{mustGeoPoint(t, 52.52, 13.405), pointA, pointB}, true).Once()

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("RouteRepository").Return(routeRepo).Once(),
		routeRepo.On("Add", ctx, mock.AnythingOfType("*route.Route")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	routeRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)

	persisted := routeRepo.Calls[0].Arguments[1].(*route.Route)
	stops := persisted.Stops()
	require.Len(t, stops, 2)
	assert.Equal(t, route.AlgorithmNearestNeighbor, persisted.Algorithm())
	assert.Equal(t, orderA.ID(), stops[0].OrderID())
	assert.Equal(t, orderB.ID(), stops[1].OrderID())

	start := date.Add(8 * time.Hour)
	assert.Equal(t, start.Add(10*time.Minute), stops[0].ETA())
	assert.Equal(t, start.Add(20*time.Minute), stops[1].ETA())
	assert.InDelta(t, 9.0, persisted.DistanceKm(), 0.001)

	_, hasPolyline := persisted.Polyline()
	assert.True(t, hasPolyline)
}

func TestCreateRouteCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	factory := new(MockRouteUoWFactory)

	handler := commands.NewCreateRouteCommandHandler(
		factory, new(MockOrderRepository), new(MockVehicleRepository),
		new(MockAddressResolver), new(MockDistanceOracle), testConfig(t), testLogger())
	err := handler.Handle(ctx, commands.CreateRouteCommand{})

	require.ErrorIs(t, err, commands.ErrCreateRouteCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateRouteCommandHandler_Handle_TooManyOrders(t *testing.T) {
	ctx := t.Context()
	orderIDs := make([]kernel.UUID, 3)
	for i := range orderIDs {
		orderIDs[i] = kernel.NewUUID()
	}
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		orderIDs, nil, nil, time.Time{}, route.AlgorithmManual)
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.MaxStops = 2

	orderRepo := new(MockOrderRepository)
	handler := commands.NewCreateRouteCommandHandler(
		new(MockRouteUoWFactory), orderRepo, new(MockVehicleRepository),
		new(MockAddressResolver), new(MockDistanceOracle), cfg, testLogger())
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	orderRepo.AssertNotCalled(t, "GetByIDs")
}

func TestCreateRouteCommandHandler_Handle_NoRoutableOrders(t *testing.T) {
	ctx := t.Context()
	orderA := testOrder(t, "Nowhere 1", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		[]kernel.UUID{orderA.ID()}, nil, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderA}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(kernel.GeoPoint{}, "", false).Once()

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver,
		new(MockDistanceOracle), testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrNoRoutableOrders)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateRouteCommandHandler_Handle_UnresolvableOrderExcluded(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	orderA := testOrder(t, "Torstr. 1", 10)
	orderB := testOrder(t, "Nowhere 99", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderA.ID(), orderB.ID()},
		nil, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	matrix := kernel.NewCostMatrix(2)
	matrix.Set(0, 1, kernel.Leg{DistanceM: 5000, DurationS: 600})
	matrix.Set(1, 0, kernel.Leg{DistanceM: 5000, DurationS: 600})

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	routeRepo := new(MockRouteRepository)
	uow := new(MockRouteUoW)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderA, orderB}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(mustGeoPoint(t, 52.53, 13.40), "osrm", true).Once()
	resolver.On("Resolve", ctx, orderB.Address()).Return(kernel.GeoPoint{}, "", false).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(matrix, true).Once()
	oracle.On("SupportsOptimization").Return(false).Once()
	oracle.On("Geometry", ctx, mock.Anything).Return(nil, false).Once()

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	routeRepo.On("Add", ctx, mock.AnythingOfType("*route.Route")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	persisted := routeRepo.Calls[0].Arguments[1].(*route.Route)
	require.Len(t, persisted.Stops(), 1)
	assert.Equal(t, orderA.ID(), persisted.Stops()[0].OrderID())

	_, hasPolyline := persisted.Polyline()
	assert.False(t, hasPolyline)
}

func TestCreateRouteCommandHandler_Handle_MatrixUnavailableKeepsCallerOrder(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	orderA := testOrder(t, "Torstr. 1", 10)
	orderB := testOrder(t, "Torstr. 2", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderB.ID(), orderA.ID()},
		nil, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	routeRepo := new(MockRouteRepository)
	uow := new(MockRouteUoW)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderB, orderA}, nil).Once()
	resolver.On("Resolve", ctx, orderB.Address()).Return(mustGeoPoint(t, 52.54, 13.41), "osrm", true).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(mustGeoPoint(t, 52.53, 13.40), "osrm", true).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(kernel.CostMatrix{}, false).Once()
	oracle.On("Geometry", ctx, mock.Anything).Return(nil, false).Once()

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	routeRepo.On("Add", ctx, mock.AnythingOfType("*route.Route")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	persisted := routeRepo.Calls[0].Arguments[1].(*route.Route)
	require.Len(t, persisted.Stops(), 2)
	assert.Equal(t, route.AlgorithmManual, persisted.Algorithm())
	assert.Equal(t, orderB.ID(), persisted.Stops()[0].OrderID())
	assert.Equal(t, orderA.ID(), persisted.Stops()[1].OrderID())
	assert.InDelta(t, 0.0, persisted.DistanceKm(), 0.001)
}

func TestCreateRouteCommandHandler_Handle_ManualOrderSurvivesRepoOrder(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	orderA := testOrder(t, "Torstr. 1", 10)
	orderB := testOrder(t, "Torstr. 2", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderA.ID(), orderB.ID()},
		nil, nil, time.Time{}, route.AlgorithmManual)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	routeRepo := new(MockRouteRepository)
	uow := new(MockRouteUoW)
	factory := new(MockRouteUoWFactory)

	// The repository returns rows in its own storage order, here reversed.
	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderB, orderA}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(mustGeoPoint(t, 52.53, 13.40), "osrm", true).Once()
	resolver.On("Resolve", ctx, orderB.Address()).Return(mustGeoPoint(t, 52.54, 13.41), "osrm", true).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(twoStopMatrix(), true).Once()
	oracle.On("SupportsOptimization").Return(false).Once()
	oracle.On("Geometry", ctx, mock.Anything).Return(nil, false).Once()

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	routeRepo.On("Add", ctx, mock.AnythingOfType("*route.Route")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	persisted := routeRepo.Calls[0].Arguments[1].(*route.Route)
	require.Len(t, persisted.Stops(), 2)
	assert.Equal(t, route.AlgorithmManual, persisted.Algorithm())
	assert.Equal(t, orderA.ID(), persisted.Stops()[0].OrderID())
	assert.Equal(t, orderB.ID(), persisted.Stops()[1].OrderID())
}

func TestCreateRouteCommandHandler_Handle_ExternalOptimizer(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	orderA := testOrder(t, "Torstr. 1", 10)
	orderB := testOrder(t, "Torstr. 2", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderA.ID(), orderB.ID()},
		nil, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	routeRepo := new(MockRouteRepository)
	uow := new(MockRouteUoW)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderA, orderB}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(mustGeoPoint(t, 52.53, 13.40), "osrm", true).Once()
	resolver.On("Resolve", ctx, orderB.Address()).Return(mustGeoPoint(t, 52.54, 13.41), "osrm", true).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(twoStopMatrix(), true).Once()
	oracle.On("SupportsOptimization").Return(true).Once()
	oracle.On("Optimize", ctx, mock.Anything, mock.Anything).Return([]int{1, 0}, true).Once()
	oracle.On("Geometry", ctx, mock.Anything).Return(nil, false).Once()

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	routeRepo.On("Add", ctx, mock.AnythingOfType("*route.Route")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	persisted := routeRepo.Calls[0].Arguments[1].(*route.Route)
	require.Len(t, persisted.Stops(), 2)
	assert.Equal(t, route.AlgorithmExternal, persisted.Algorithm())
	assert.Equal(t, orderB.ID(), persisted.Stops()[0].OrderID())
	assert.Equal(t, orderA.ID(), persisted.Stops()[1].OrderID())
}

func TestCreateRouteCommandHandler_Handle_ExternalOptimizerBadPermutation(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	orderA := testOrder(t, "Torstr. 1", 10)
	orderB := testOrder(t, "Torstr. 2", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderA.ID(), orderB.ID()},
		nil, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	routeRepo := new(MockRouteRepository)
	uow := new(MockRouteUoW)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderA, orderB}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(mustGeoPoint(t, 52.53, 13.40), "osrm", true).Once()
	resolver.On("Resolve", ctx, orderB.Address()).Return(mustGeoPoint(t, 52.54, 13.41), "osrm", true).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(twoStopMatrix(), true).Once()
	oracle.On("SupportsOptimization").Return(true).Once()
	oracle.On("Optimize", ctx, mock.Anything, mock.Anything).Return([]int{0, 0}, true).Once()
	oracle.On("Geometry", ctx, mock.Anything).Return(nil, false).Once()

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	routeRepo.On("Add", ctx, mock.AnythingOfType("*route.Route")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	persisted := routeRepo.Calls[0].Arguments[1].(*route.Route)
	assert.Equal(t, route.AlgorithmNearestNeighbor, persisted.Algorithm())
	assert.Equal(t, orderA.ID(), persisted.Stops()[0].OrderID())
}

func TestCreateRouteCommandHandler_Handle_VehicleCapacityExceeded(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	orderA := testOrder(t, "Torstr. 1", 900)
	vehicleID := kernel.NewUUID()
	smallVan, err := vehicle.NewVehicle(vehicleID, "Sprinter", 500, 10, "driving")
	require.NoError(t, err)

	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderA.ID()},
		&vehicleID, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	matrix := kernel.NewCostMatrix(2)
	matrix.Set(0, 1, kernel.Leg{DistanceM: 5000, DurationS: 600})

	orderRepo := new(MockOrderRepository)
	vehicleRepo := new(MockVehicleRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderA}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(mustGeoPoint(t, 52.53, 13.40), "osrm", true).Once()
	vehicleRepo.On("Get", ctx, vehicleID).Return(smallVan, nil).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(matrix, true).Once()
	oracle.On("SupportsOptimization").Return(false).Once()

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, vehicleRepo, resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrVehicleCapacityExceeded)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateRouteCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	orderA := testOrder(t, "Torstr. 1", 10)
	cmd, err := commands.NewCreateRouteCommand(
		kernel.NewUUID(), date,
		[]kernel.UUID{orderA.ID()},
		nil, nil, time.Time{}, route.AlgorithmNearestNeighbor)
	require.NoError(t, err)

	matrix := kernel.NewCostMatrix(2)
	matrix.Set(0, 1, kernel.Leg{DistanceM: 5000, DurationS: 600})

	orderRepo := new(MockOrderRepository)
	resolver := new(MockAddressResolver)
	oracle := new(MockDistanceOracle)
	routeRepo := new(MockRouteRepository)
	uow := new(MockRouteUoW)
	factory := new(MockRouteUoWFactory)

	orderRepo.On("GetByIDs", ctx, cmd.OrderIDs()).Return([]*order.Order{orderA}, nil).Once()
	resolver.On("Resolve", ctx, orderA.Address()).Return(mustGeoPoint(t, 52.53, 13.40), "osrm", true).Once()
	oracle.On("Matrix", ctx, mock.Anything).Return(matrix, true).Once()
	oracle.On("SupportsOptimization").Return(false).Once()
	oracle.On("Geometry", ctx, mock.Anything).Return(nil, false).Once()

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("RouteRepository").Return(routeRepo).Once(),
		routeRepo.On("Add", ctx, mock.AnythingOfType("*route.Route")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewCreateRouteCommandHandler(
		factory, orderRepo, new(MockVehicleRepository), resolver, oracle, testConfig(t), testLogger())
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.EqualError(t, err, "commit error")
}
