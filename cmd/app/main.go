package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"routing/cmd"
	httpin "routing/internal/adapters/in/http"
	"routing/internal/adapters/out/postgres/geocache"
	"routing/internal/adapters/out/postgres/orderrepo"
	"routing/internal/adapters/out/postgres/routerepo"
	"routing/internal/adapters/out/postgres/vehiclerepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db := openDatabase(configs)

	root, err := cmd.NewCompositionRoot(configs, db, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	startWebServer(&root, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}

	return cmd.Config{
		HTTPPort:   envOr("HTTP_PORT", "8080"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		GeoProviders:     envOr("GEO_PROVIDERS", "osrm"),
		GeoProfile:       envOr("GEO_PROFILE", "driving"),
		OSRMBaseURL:      os.Getenv("OSRM_BASE_URL"),
		NominatimBaseURL: os.Getenv("NOMINATIM_BASE_URL"),
		ORSAPIKey:        os.Getenv("ORS_API_KEY"),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		TomTomAPIKey:     os.Getenv("TOMTOM_API_KEY"),

		DepotLat:         envFloat("DEPOT_LAT", 52.520008),
		DepotLng:         envFloat("DEPOT_LNG", 13.404954),
		ServiceTime:      time.Duration(envInt("SERVICE_TIME_MIN", 5)) * time.Minute,
		WorkdayStart:     time.Duration(envInt("WORKDAY_START_HOUR", 8)) * time.Hour,
		MaxStopsPerRoute: envInt("MAX_STOPS_PER_ROUTE", 100),
		VRPSearchBudget:  time.Duration(envInt("VRP_SEARCH_BUDGET_SEC", 30)) * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %v", key, err)
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("Invalid float for %s: %v", key, err)
	}
	return parsed
}

func openDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&routerepo.RouteDTO{},
		&routerepo.StopDTO{},
		&routerepo.PolylinePointDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.OrderLineDTO{},
		&vehiclerepo.VehicleDTO{},
		&geocache.GeocodeEntryDTO{},
		&geocache.DistanceEntryDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	return db
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	server := httpin.NewServer(
		root.CreateCreateRouteCommandHandler(),
		root.CreateReorderStopsCommandHandler(),
		root.CreateChangeStopStatusCommandHandler(),
		root.CreateGetRouteQueryHandler(),
		root.CreateGetDriverStopsQueryHandler(),
	)

	e := echo.New()
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
