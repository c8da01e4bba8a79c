package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
)

const (
	defaultOSRMBaseURL      = "https://router.project-osrm.org"
	defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
)

// OSRMProvider answers routing questions via an OSRM instance and
// geocodes through Nominatim. Neither endpoint needs an API key, which
// makes this the default provider. It supports batched matrices via the
// OSRM table service but offers no route optimization.
type OSRMProvider struct {
	client           *restClient
	baseURL          string
	nominatimBaseURL string
	profile          string
	userAgent        string
}

// OSRMConfig carries the endpoints of an OSRM provider. Zero-value fields
// fall back to the public demo instances.
type OSRMConfig struct {
	BaseURL          string
	NominatimBaseURL string
	Profile          string
	UserAgent        string
	Session          *http.Client
}

func NewOSRMProvider(cfg OSRMConfig) *OSRMProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOSRMBaseURL
	}
	if cfg.NominatimBaseURL == "" {
		cfg.NominatimBaseURL = defaultNominatimBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = "driving"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "routing-service"
	}
	return &OSRMProvider{
		client:           newRESTClient(cfg.Session),
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		nominatimBaseURL: strings.TrimRight(cfg.NominatimBaseURL, "/"),
		profile:          cfg.Profile,
		userAgent:        cfg.UserAgent,
	}
}

func (p *OSRMProvider) Name() string {
	return "osrm"
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (p *OSRMProvider) Resolve(ctx context.Context, address string) (kernel.GeoPoint, error) {
	endpoint := p.nominatimBaseURL + "/search"

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", p.userAgent)
		q := req.URL.Query()
		q.Set("q", address)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("nominatim search: %w", err)
	}
	defer resp.Body.Close()

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return kernel.GeoPoint{}, ports.ErrNoResult
	}

	var lat, lon float64
	if _, err := fmt.Sscanf(results[0].Lat, "%f", &lat); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("parse nominatim lat: %w", err)
	}
	if _, err := fmt.Sscanf(results[0].Lon, "%f", &lon); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("parse nominatim lon: %w", err)
	}

	return kernel.NewGeoPoint(lat, lon)
}

type osrmRouteResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (p *OSRMProvider) Pair(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (kernel.Leg, error) {
	decoded, err := p.route(ctx, []kernel.GeoPoint{origin, destination}, false)
	if err != nil {
		return kernel.Leg{}, err
	}

	r := decoded.Routes[0]
	return kernel.Leg{
		DistanceM: int(math.Round(r.Distance)),
		DurationS: int(math.Round(r.Duration)),
	}, nil
}

func (p *OSRMProvider) Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, error) {
	decoded, err := p.route(ctx, waypoints, true)
	if err != nil {
		return nil, err
	}

	coords := decoded.Routes[0].Geometry.Coordinates
	points := make([]kernel.GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) != 2 {
			return nil, fmt.Errorf("invalid coordinate in OSRM geometry")
		}
		pt, err := kernel.NewGeoPoint(c[1], c[0])
		if err != nil {
			return nil, fmt.Errorf("invalid point in OSRM geometry: %w", err)
		}
		points = append(points, pt)
	}
	return points, nil
}

func (p *OSRMProvider) route(ctx context.Context, waypoints []kernel.GeoPoint, fullGeometry bool) (*osrmRouteResponse, error) {
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s", p.baseURL, p.profile, coordinatePath(waypoints))

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		if fullGeometry {
			q.Set("overview", "full")
			q.Set("geometries", "geojson")
		} else {
			q.Set("overview", "false")
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode osrm route response: %w", err)
	}
	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, ports.ErrNoResult
	}
	return &decoded, nil
}

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// Matrix computes all pairwise costs in one OSRM table call.
func (p *OSRMProvider) Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, error) {
	endpoint := fmt.Sprintf("%s/table/v1/%s/%s", p.baseURL, p.profile, coordinatePath(points))

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("annotations", "duration,distance")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return kernel.CostMatrix{}, fmt.Errorf("osrm table: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.CostMatrix{}, fmt.Errorf("decode osrm table response: %w", err)
	}
	if decoded.Code != "Ok" {
		return kernel.CostMatrix{}, ports.ErrNoResult
	}
	if len(decoded.Durations) != len(points) || len(decoded.Distances) != len(points) {
		return kernel.CostMatrix{}, fmt.Errorf("osrm table size mismatch: got %d rows, want %d", len(decoded.Durations), len(points))
	}

	matrix := kernel.NewCostMatrix(len(points))
	for i := range points {
		if len(decoded.Durations[i]) != len(points) || len(decoded.Distances[i]) != len(points) {
			return kernel.CostMatrix{}, fmt.Errorf("osrm table row %d size mismatch", i)
		}
		for j := range points {
			d, t := decoded.Distances[i][j], decoded.Durations[i][j]
			if d == nil || t == nil {
				return kernel.CostMatrix{}, ports.ErrNoResult
			}
			matrix.Set(i, j, kernel.Leg{
				DistanceM: int(math.Round(*d)),
				DurationS: int(math.Round(*t)),
			})
		}
	}
	return matrix, nil
}

// coordinatePath renders waypoints as the lon,lat;lon,lat path segment
// OSRM expects.
func coordinatePath(points []kernel.GeoPoint) string {
	parts := make([]string, 0, len(points))
	for _, pt := range points {
		parts = append(parts, fmt.Sprintf("%f,%f", pt.Lng(), pt.Lat()))
	}
	return strings.Join(parts, ";")
}
