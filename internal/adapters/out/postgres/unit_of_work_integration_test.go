package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "routing/internal/adapters/out/postgres"
	"routing/internal/adapters/out/postgres/geocache"
	"routing/internal/adapters/out/postgres/orderrepo"
	"routing/internal/adapters/out/postgres/routerepo"
	"routing/internal/adapters/out/postgres/vehiclerepo"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/domain/model/route"
	"routing/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresIntegrationTestSuite exercises the GORM adapters against a real
// PostgreSQL instance: unit of work transaction handling, route aggregate
// round-trips, the read-only repositories and the geo caches.
type PostgresIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *PostgresIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&routerepo.RouteDTO{}, &routerepo.StopDTO{}, &routerepo.PolylinePointDTO{},
		&orderrepo.OrderDTO{}, &orderrepo.OrderLineDTO{},
		&vehiclerepo.VehicleDTO{},
		&geocache.GeocodeEntryDTO{}, &geocache.DistanceEntryDTO{},
	)
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *PostgresIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(
		"TRUNCATE TABLE routes, stops, route_polyline_points, orders, order_lines, vehicles, geocode_cache, distance_cache").Error
	suite.Require().NoError(err)
}

func (suite *PostgresIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *PostgresIntegrationTestSuite) newRoute(stopCount int) *route.Route {
	r, err := route.NewRoute(kernel.NewUUID(),
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		route.AlgorithmNearestNeighbor, nil, nil)
	suite.Require().NoError(err)

	eta := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < stopCount; i++ {
		eta = eta.Add(20 * time.Minute)
		_, err = r.AddStop(kernel.NewUUID(), kernel.NewUUID(), eta, 1000*(i+1), 300)
		suite.Require().NoError(err)
	}
	return r
}

func (suite *PostgresIntegrationTestSuite) TestCommitPersistsRoute() {
	ctx := context.Background()
	r := suite.newRoute(3)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.Commit(ctx))

	loaded, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.True(loaded.ID().IsEqual(r.ID()))
	suite.Equal(route.StatusPlanned, loaded.Status())
	suite.Len(loaded.Stops(), 3)
	for i, s := range loaded.Stops() {
		suite.Equal(i+1, s.Sequence())
		suite.Equal(route.StopStatusPending, s.Status())
	}
	suite.InDelta(6.0, loaded.DistanceKm(), 1e-9)
}

func (suite *PostgresIntegrationTestSuite) TestRollbackDiscardsRoute() {
	ctx := context.Background()
	r := suite.newRoute(1)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Error(err)
}

func (suite *PostgresIntegrationTestSuite) TestCommitWithoutBeginFails() {
	uow := suite.factory.Create()
	suite.ErrorIs(uow.Commit(context.Background()), gorm.ErrInvalidTransaction)
}

func (suite *PostgresIntegrationTestSuite) TestUpdateRoundTripsStatusAndStops() {
	ctx := context.Background()
	r := suite.newRoute(2)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.Commit(ctx))

	r.Consume()
	stopID := r.Stops()[0].ID()
	_, err := r.ChangeStopStatus(stopID, route.StopStatusArrived)
	suite.Require().NoError(err)

	uow = suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Update(ctx, r))
	suite.Require().NoError(uow.Commit(ctx))

	loaded, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(route.StatusInProgress, loaded.Status())
	suite.Equal(route.StopStatusArrived, loaded.Stops()[0].Status())
}

func (suite *PostgresIntegrationTestSuite) TestPolylineRoundTripAndRemoval() {
	ctx := context.Background()
	r := suite.newRoute(2)

	p1, err := kernel.NewGeoPoint(52.52, 13.40)
	suite.Require().NoError(err)
	p2, err := kernel.NewGeoPoint(52.53, 13.42)
	suite.Require().NoError(err)
	polyline, err := route.NewPolyline([]kernel.GeoPoint{p1, p2})
	suite.Require().NoError(err)
	suite.Require().NoError(r.AttachPolyline(polyline))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.Commit(ctx))

	loaded, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	got, ok := loaded.Polyline()
	suite.Require().True(ok)
	suite.Len(got.Points(), 2)
	suite.Equal(p1, got.Points()[0])

	loaded.RemovePolyline()
	uow = suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Update(ctx, loaded))
	suite.Require().NoError(uow.Commit(ctx))

	reloaded, err := suite.factory.Create().RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
	_, ok = reloaded.Polyline()
	suite.False(ok)
}

func (suite *PostgresIntegrationTestSuite) TestGetByStopID() {
	ctx := context.Background()
	r := suite.newRoute(2)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.Commit(ctx))

	loaded, err := suite.factory.Create().RouteRepository().GetByStopID(ctx, r.Stops()[1].ID())
	suite.Require().NoError(err)
	suite.True(loaded.ID().IsEqual(r.ID()))
}

func (suite *PostgresIntegrationTestSuite) TestOrderRepositoryGetByIDs() {
	ctx := context.Background()

	orderID := kernel.NewUUID()
	suite.Require().NoError(suite.db.Create(&orderrepo.OrderDTO{
		ID:         orderID.Bytes(),
		Street:     "Invalidenstr. 117",
		City:       "Berlin",
		PostalCode: "10115",
		Country:    "DE",
		Lines: []orderrepo.OrderLineDTO{
			{Quantity: 2, UnitMassKg: 4.5, UnitVolumeM3: 0.02},
		},
	}).Error)

	repo := orderrepo.NewGormOrderRepository(suite.db)
	orders, err := repo.GetByIDs(ctx, []kernel.UUID{orderID, kernel.NewUUID()})
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)
	suite.Equal("Invalidenstr. 117, 10115, Berlin, DE", orders[0].Address())
	suite.InDelta(9.0, orders[0].Demand().MassKg, 1e-9)
}

func (suite *PostgresIntegrationTestSuite) TestVehicleRepositoryGet() {
	ctx := context.Background()

	vehicleID := kernel.NewUUID()
	suite.Require().NoError(suite.db.Create(&vehiclerepo.VehicleDTO{
		ID:         vehicleID.Bytes(),
		Name:       "Sprinter 1",
		CapacityKg: 1200,
		CapacityM3: 11,
		Profile:    "driving-car",
	}).Error)

	v, err := vehiclerepo.NewGormVehicleRepository(suite.db).Get(ctx, vehicleID)
	suite.Require().NoError(err)
	suite.Equal("Sprinter 1", v.Name())
	suite.InDelta(1200.0, v.CapacityKg(), 1e-9)
}

func (suite *PostgresIntegrationTestSuite) TestGeocodeCachePutGet() {
	ctx := context.Background()
	cache := geocache.NewGormGeocodeCache(suite.db)

	point, err := kernel.NewGeoPoint(52.5311, 13.3854)
	suite.Require().NoError(err)
	entry := ports.CachedCoordinate{AddressHash: "abc123", Point: point, Provider: "osrm"}

	suite.Require().NoError(cache.Put(ctx, entry))
	// Duplicate insert is a no-op, not an error.
	suite.Require().NoError(cache.Put(ctx, entry))

	got, err := cache.Get(ctx, "abc123")
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(point, got.Point)
	suite.Equal("osrm", got.Provider)

	miss, err := cache.Get(ctx, "missing")
	suite.Require().NoError(err)
	suite.Nil(miss)
}

func (suite *PostgresIntegrationTestSuite) TestDistanceCacheIsDirectional() {
	ctx := context.Background()
	cache := geocache.NewGormDistanceCache(suite.db)

	suite.Require().NoError(cache.Put(ctx, ports.CachedLeg{
		OriginHash: "a", DestinationHash: "b",
		Leg: kernel.Leg{DistanceM: 1000, DurationS: 100}, Provider: "osrm",
	}))

	forward, err := cache.Get(ctx, "a", "b")
	suite.Require().NoError(err)
	suite.Require().NotNil(forward)
	suite.Equal(1000, forward.Leg.DistanceM)

	reverse, err := cache.Get(ctx, "b", "a")
	suite.Require().NoError(err)
	suite.Nil(reverse)
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresIntegrationTestSuite))
}
