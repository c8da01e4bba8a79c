package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
)

const defaultGoogleBaseURL = "https://maps.googleapis.com"

// GoogleProvider uses the Google Maps web services: Geocoding, Distance
// Matrix and Directions. Route geometry is decoded from the overview
// polyline. No optimization capability is exposed.
type GoogleProvider struct {
	client  *restClient
	apiKey  string
	baseURL string
}

type GoogleConfig struct {
	APIKey  string
	BaseURL string
	Session *http.Client
}

func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGoogleBaseURL
	}
	return &GoogleProvider{
		client:  newRESTClient(cfg.Session),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) get(ctx context.Context, endpoint string, params map[string]string) (*http.Response, error) {
	return p.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		q.Set("key", p.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (p *GoogleProvider) Resolve(ctx context.Context, address string) (kernel.GeoPoint, error) {
	resp, err := p.get(ctx, "/maps/api/geocode/json", map[string]string{"address": address})
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("google geocode: %w", err)
	}
	defer resp.Body.Close()

	var decoded googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("decode google geocode response: %w", err)
	}
	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return kernel.GeoPoint{}, ports.ErrNoResult
	}

	loc := decoded.Results[0].Geometry.Location
	return kernel.NewGeoPoint(loc.Lat, loc.Lng)
}

type googleMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (p *GoogleProvider) Pair(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (kernel.Leg, error) {
	resp, err := p.get(ctx, "/maps/api/distancematrix/json", map[string]string{
		"origins":      latLngParam(origin),
		"destinations": latLngParam(destination),
	})
	if err != nil {
		return kernel.Leg{}, fmt.Errorf("google distance matrix: %w", err)
	}
	defer resp.Body.Close()

	var decoded googleMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.Leg{}, fmt.Errorf("decode google distance matrix response: %w", err)
	}
	if decoded.Status != "OK" || len(decoded.Rows) == 0 || len(decoded.Rows[0].Elements) == 0 {
		return kernel.Leg{}, ports.ErrNoResult
	}

	elem := decoded.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return kernel.Leg{}, ports.ErrNoResult
	}
	return kernel.Leg{
		DistanceM: elem.Distance.Value,
		DurationS: elem.Duration.Value,
	}, nil
}

// Matrix batches all pairs into a single Distance Matrix call with the
// same points as origins and destinations.
func (p *GoogleProvider) Matrix(ctx context.Context, points []kernel.GeoPoint) (kernel.CostMatrix, error) {
	param := joinLatLng(points)
	resp, err := p.get(ctx, "/maps/api/distancematrix/json", map[string]string{
		"origins":      param,
		"destinations": param,
	})
	if err != nil {
		return kernel.CostMatrix{}, fmt.Errorf("google distance matrix: %w", err)
	}
	defer resp.Body.Close()

	var decoded googleMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.CostMatrix{}, fmt.Errorf("decode google distance matrix response: %w", err)
	}
	if decoded.Status != "OK" || len(decoded.Rows) != len(points) {
		return kernel.CostMatrix{}, ports.ErrNoResult
	}

	matrix := kernel.NewCostMatrix(len(points))
	for i, row := range decoded.Rows {
		if len(row.Elements) != len(points) {
			return kernel.CostMatrix{}, fmt.Errorf("google matrix row %d size mismatch", i)
		}
		for j, elem := range row.Elements {
			if elem.Status != "OK" {
				return kernel.CostMatrix{}, ports.ErrNoResult
			}
			matrix.Set(i, j, kernel.Leg{
				DistanceM: elem.Distance.Value,
				DurationS: elem.Duration.Value,
			})
		}
	}
	return matrix, nil
}

type googleDirectionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

func (p *GoogleProvider) Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, error) {
	if len(waypoints) < 2 {
		return nil, ports.ErrNoResult
	}

	params := map[string]string{
		"origin":      latLngParam(waypoints[0]),
		"destination": latLngParam(waypoints[len(waypoints)-1]),
	}
	if len(waypoints) > 2 {
		params["waypoints"] = joinLatLng(waypoints[1 : len(waypoints)-1])
	}

	resp, err := p.get(ctx, "/maps/api/directions/json", params)
	if err != nil {
		return nil, fmt.Errorf("google directions: %w", err)
	}
	defer resp.Body.Close()

	var decoded googleDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode google directions response: %w", err)
	}
	if decoded.Status != "OK" || len(decoded.Routes) == 0 {
		return nil, ports.ErrNoResult
	}

	return decodePolyline(decoded.Routes[0].OverviewPolyline.Points)
}

// decodePolyline decodes the Google encoded polyline format: deltas of
// lat/lng scaled by 1e5, varint encoded in 5-bit groups offset by 63.
func decodePolyline(encoded string) ([]kernel.GeoPoint, error) {
	var points []kernel.GeoPoint
	var lat, lng int64
	idx := 0

	next := func() (int64, error) {
		var result int64
		var shift uint
		for {
			if idx >= len(encoded) {
				return 0, errors.New("truncated polyline")
			}
			b := int64(encoded[idx]) - 63
			idx++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		if result&1 != 0 {
			return ^(result >> 1), nil
		}
		return result >> 1, nil
	}

	for idx < len(encoded) {
		dLat, err := next()
		if err != nil {
			return nil, err
		}
		dLng, err := next()
		if err != nil {
			return nil, err
		}
		lat += dLat
		lng += dLng

		pt, err := kernel.NewGeoPoint(float64(lat)/1e5, float64(lng)/1e5)
		if err != nil {
			return nil, fmt.Errorf("invalid point in polyline: %w", err)
		}
		points = append(points, pt)
	}
	return points, nil
}

func latLngParam(pt kernel.GeoPoint) string {
	return fmt.Sprintf("%f,%f", pt.Lat(), pt.Lng())
}

func joinLatLng(points []kernel.GeoPoint) string {
	parts := make([]string, 0, len(points))
	for _, pt := range points {
		parts = append(parts, latLngParam(pt))
	}
	return strings.Join(parts, "|")
}
