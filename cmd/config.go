package cmd

import "time"

// Config carries everything the composition root needs to wire the
// application: database access, geo provider selection and credentials,
// and the route planning parameters.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// GeoProviders is the comma-separated provider priority order, e.g.
	// "ors,osrm". Providers whose credentials are missing are skipped
	// with a warning at startup.
	GeoProviders     string
	GeoProfile       string
	OSRMBaseURL      string
	NominatimBaseURL string
	ORSAPIKey        string
	GoogleAPIKey     string
	TomTomAPIKey     string

	DepotLat         float64
	DepotLng         float64
	ServiceTime      time.Duration
	WorkdayStart     time.Duration
	MaxStopsPerRoute int
	VRPSearchBudget  time.Duration
}
