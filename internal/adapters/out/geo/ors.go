package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
)

const defaultORSBaseURL = "https://api.openrouteservice.org"

// ORSProvider talks to OpenRouteService: geocoding, matrix, directions
// and the VROOM-based optimization endpoint. It is the only provider in
// the chain implementing every optional capability.
type ORSProvider struct {
	client  *restClient
	apiKey  string
	baseURL string
	profile string
}

type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile string
	Session *http.Client
}

func NewORSProvider(cfg ORSConfig) (*ORSProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ors api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultORSBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = "driving-car"
	}
	return &ORSProvider{
		client:  newRESTClient(cfg.Session),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: cfg.Profile,
	}, nil
}

func (p *ORSProvider) Name() string {
	return "ors"
}

func (p *ORSProvider) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (p *ORSProvider) Resolve(ctx context.Context, address string) (kernel.GeoPoint, error) {
	endpoint := p.baseURL + "/geocode/search"

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := p.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("ors geocode: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("decode ors geocode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return kernel.GeoPoint{}, ports.ErrNoResult
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return kernel.GeoPoint{}, fmt.Errorf("invalid coordinate format in ors geocode response")
	}
	return kernel.NewGeoPoint(coords[1], coords[0])
}

type orsMatrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type orsMatrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Matrix computes all pairwise costs in one ORS matrix call.
func (p *ORSProvider) Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", p.baseURL, p.profile)

	payload, err := json.Marshal(orsMatrixRequest{
		Locations: lonLatList(points),
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return kernel.CostMatrix{}, fmt.Errorf("marshal ors matrix request: %w", err)
	}

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return kernel.CostMatrix{}, fmt.Errorf("ors matrix: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.CostMatrix{}, fmt.Errorf("decode ors matrix response: %w", err)
	}
	if len(decoded.Distances) != len(points) || len(decoded.Durations) != len(points) {
		return kernel.CostMatrix{}, fmt.Errorf("ors matrix size mismatch: got %d rows, want %d", len(decoded.Distances), len(points))
	}

	matrix := kernel.NewCostMatrix(len(points))
	for i := range points {
		if len(decoded.Distances[i]) != len(points) || len(decoded.Durations[i]) != len(points) {
			return kernel.CostMatrix{}, fmt.Errorf("ors matrix row %d size mismatch", i)
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

func (p *ORSProvider) Pair(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (kernel.Leg, error) {
	matrix, err := p.Matrix(ctx, []kernel.GeoPoint{origin, destination})
	if err != nil {
		return kernel.Leg{}, err
	}
	return matrix.At(0, 1), nil
}

type orsDirectionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type orsDirectionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (p *ORSProvider) Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", p.baseURL, p.profile)

	payload, err := json.Marshal(orsDirectionsRequest{Coordinates: lonLatList(waypoints)})
	if err != nil {
		return nil, fmt.Errorf("marshal ors directions request: %w", err)
	}

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("ors directions: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode ors directions response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return nil, ports.ErrNoResult
	}

	coords := decoded.Features[0].Geometry.Coordinates
	points := make([]kernel.GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) != 2 {
			return nil, fmt.Errorf("invalid coordinate in ors directions response")
		}
		pt, err := kernel.NewGeoPoint(c[1], c[0])
		if err != nil {
			return nil, fmt.Errorf("invalid point in ors directions response: %w", err)
		}
		points = append(points, pt)
	}
	return points, nil
}

type orsOptimizationRequest struct {
	Jobs     []orsOptimizationJob     `json:"jobs"`
	Vehicles []orsOptimizationVehicle `json:"vehicles"`
}

type orsOptimizationJob struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
}

type orsOptimizationVehicle struct {
	ID      int       `json:"id"`
	Profile string    `json:"profile"`
	Start   []float64 `json:"start"`
}

type orsOptimizationResponse struct {
	Routes []struct {
		Steps []struct {
			Type string `json:"type"`
			Job  int    `json:"job"`
		} `json:"steps"`
	} `json:"routes"`
}

// Optimize delegates sequencing to the ORS optimization endpoint. Job IDs
// are the 1-based point indices; the returned permutation is 0-based.
func (p *ORSProvider) Optimize(ctx context.Context, depot kernel.GeoPoint, points []kernel.GeoPoint) ([]int, error) {
	endpoint := p.baseURL + "/optimization"

	jobs := make([]orsOptimizationJob, 0, len(points))
	for i, pt := range points {
		jobs = append(jobs, orsOptimizationJob{
			ID:       i + 1,
			Location: []float64{pt.Lng(), pt.Lat()},
		})
	}

	payload, err := json.Marshal(orsOptimizationRequest{
		Jobs: jobs,
		Vehicles: []orsOptimizationVehicle{{
			ID:      1,
			Profile: p.profile,
			Start:   []float64{depot.Lng(), depot.Lat()},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ors optimization request: %w", err)
	}

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("ors optimization: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsOptimizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode ors optimization response: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return nil, ports.ErrNoResult
	}

	permutation := make([]int, 0, len(points))
	for _, step := range decoded.Routes[0].Steps {
		if step.Type != "job" {
			continue
		}
		permutation = append(permutation, step.Job-1)
	}
	return permutation, nil
}

func lonLatList(points []kernel.GeoPoint) [][]float64 {
	out := make([][]float64, 0, len(points))
	for _, pt := range points {
		out = append(out, []float64{pt.Lng(), pt.Lat()})
	}
	return out
}
