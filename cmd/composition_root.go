package cmd

import (
	"log/slog"
	"strings"

	"routing/internal/adapters/out/geo"
	"routing/internal/adapters/out/postgres"
	"routing/internal/adapters/out/postgres/geocache"
	"routing/internal/adapters/out/postgres/orderrepo"
	"routing/internal/adapters/out/postgres/vehiclerepo"
	"routing/internal/core/application/usecases/commands"
	"routing/internal/core/application/usecases/queries"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use cases. All shared dependencies
// (db, provider chain, caches) are built once; handlers are cheap to
// create per call site.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	resolver   ports.AddressResolver
	oracle     ports.DistanceOracle
	depot      kernel.GeoPoint
	logger     *slog.Logger
}

// NewCompositionRoot builds the object graph from configuration. The geo
// provider chain follows the configured priority order; providers with
// missing credentials are skipped.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	depot, err := kernel.NewGeoPoint(config.DepotLat, config.DepotLng)
	if err != nil {
		return CompositionRoot{}, err
	}

	chain := geo.NewChain(buildProviders(config, logger), logger)
	resolver := geo.NewCachedAddressResolver(chain, geocache.NewGormGeocodeCache(gormDB), logger)
	oracle := geo.NewCachedDistanceOracle(chain, geocache.NewGormDistanceCache(gormDB), logger)

	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		resolver:   resolver,
		oracle:     oracle,
		depot:      depot,
		logger:     logger,
	}, nil
}

func buildProviders(config Config, logger *slog.Logger) []ports.GeoProvider {
	order := config.GeoProviders
	if order == "" {
		order = "osrm"
	}

	providers := make([]ports.GeoProvider, 0, 4)
	for _, name := range strings.Split(order, ",") {
		switch strings.TrimSpace(name) {
		case "osrm":
			providers = append(providers, geo.NewOSRMProvider(geo.OSRMConfig{
				BaseURL:          config.OSRMBaseURL,
				NominatimBaseURL: config.NominatimBaseURL,
				Profile:          config.GeoProfile,
			}))
		case "ors":
			provider, err := geo.NewORSProvider(geo.ORSConfig{
				APIKey:  config.ORSAPIKey,
				Profile: config.GeoProfile,
			})
			if err != nil {
				logger.Warn("skipping ors provider", "error", err)
				continue
			}
			providers = append(providers, provider)
		case "google":
			provider, err := geo.NewGoogleProvider(geo.GoogleConfig{APIKey: config.GoogleAPIKey})
			if err != nil {
				logger.Warn("skipping google provider", "error", err)
				continue
			}
			providers = append(providers, provider)
		case "tomtom":
			provider, err := geo.NewTomTomProvider(geo.TomTomConfig{APIKey: config.TomTomAPIKey})
			if err != nil {
				logger.Warn("skipping tomtom provider", "error", err)
				continue
			}
			providers = append(providers, provider)
		default:
			logger.Warn("unknown geo provider in config", "name", name)
		}
	}

	if len(providers) == 0 {
		providers = append(providers, geo.NewOSRMProvider(geo.OSRMConfig{
			BaseURL:          config.OSRMBaseURL,
			NominatimBaseURL: config.NominatimBaseURL,
			Profile:          config.GeoProfile,
		}))
	}
	return providers
}

func (c *CompositionRoot) CreateCreateRouteCommandHandler() commands.CreateRouteCommandHandler {
	var f commands.RouteUoWFactory = FuncRouteUoWFactory(func() commands.RouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateRouteCommandHandler(
		f,
		orderrepo.NewGormOrderRepository(c.gormDB),
		vehiclerepo.NewGormVehicleRepository(c.gormDB),
		c.resolver,
		c.oracle,
		commands.CreateRouteConfig{
			Depot:        c.depot,
			ServiceTime:  c.config.ServiceTime,
			WorkdayStart: c.config.WorkdayStart,
			MaxStops:     c.config.MaxStopsPerRoute,
			SearchBudget: c.config.VRPSearchBudget,
		},
		c.logger,
	)
}

func (c *CompositionRoot) CreateReorderStopsCommandHandler() commands.ReorderStopsCommandHandler {
	var f commands.RouteUoWFactory = FuncRouteUoWFactory(func() commands.RouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReorderStopsCommandHandler(
		f,
		orderrepo.NewGormOrderRepository(c.gormDB),
		c.resolver,
		c.oracle,
		c.depot,
		c.logger,
	)
}

func (c *CompositionRoot) CreateChangeStopStatusCommandHandler() commands.ChangeStopStatusCommandHandler {
	var f commands.RouteUoWFactory = FuncRouteUoWFactory(func() commands.RouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeStopStatusCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateGetRouteQueryHandler() queries.GetRouteQueryHandler {
	return queries.NewGetRouteQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDriverStopsQueryHandler() queries.GetDriverStopsQueryHandler {
	var f queries.RouteUoWFactory = FuncDriverRouteUoWFactory(func() queries.RouteUoW {
		return c.uowFactory.Create()
	})
	return queries.NewGetDriverStopsQueryHandler(
		f,
		orderrepo.NewGormOrderRepository(c.gormDB),
		c.logger,
	)
}

type FuncRouteUoWFactory func() commands.RouteUoW

func (f FuncRouteUoWFactory) Create() commands.RouteUoW {
	return f()
}

type FuncDriverRouteUoWFactory func() queries.RouteUoW

func (f FuncDriverRouteUoWFactory) Create() queries.RouteUoW {
	return f()
}
