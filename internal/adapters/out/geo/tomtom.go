package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"
)

const defaultTomTomBaseURL = "https://api.tomtom.com"

// TomTomProvider uses the TomTom Search and Routing APIs. It answers
// geocoding, single pairs and route geometry; there is no batched matrix,
// so the oracle assembles matrices pairwise through the cache.
type TomTomProvider struct {
	client  *restClient
	apiKey  string
	baseURL string
}

type TomTomConfig struct {
	APIKey  string
	BaseURL string
	Session *http.Client
}

func NewTomTomProvider(cfg TomTomConfig) (*TomTomProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("tomtom api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTomTomBaseURL
	}
	return &TomTomProvider{
		client:  newRESTClient(cfg.Session),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (p *TomTomProvider) Name() string {
	return "tomtom"
}

func (p *TomTomProvider) get(ctx context.Context, path string, params map[string]string) (*http.Response, error) {
	return p.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
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

type tomtomGeocodeResponse struct {
	Results []struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
	} `json:"results"`
}

func (p *TomTomProvider) Resolve(ctx context.Context, address string) (kernel.GeoPoint, error) {
	path := fmt.Sprintf("/search/2/geocode/%s.json", url.PathEscape(address))

	resp, err := p.get(ctx, path, map[string]string{"limit": "1"})
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("tomtom geocode: %w", err)
	}
	defer resp.Body.Close()

	var decoded tomtomGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("decode tomtom geocode response: %w", err)
	}
	if len(decoded.Results) == 0 {
		return kernel.GeoPoint{}, ports.ErrNoResult
	}

	pos := decoded.Results[0].Position
	return kernel.NewGeoPoint(pos.Lat, pos.Lon)
}

type tomtomRouteResponse struct {
	Routes []struct {
		Summary struct {
			LengthInMeters      float64 `json:"lengthInMeters"`
			TravelTimeInSeconds float64 `json:"travelTimeInSeconds"`
		} `json:"summary"`
		Legs []struct {
			Points []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
}

func (p *TomTomProvider) route(ctx context.Context, waypoints []kernel.GeoPoint) (*tomtomRouteResponse, error) {
	locs := make([]string, 0, len(waypoints))
	for _, pt := range waypoints {
		locs = append(locs, fmt.Sprintf("%f,%f", pt.Lat(), pt.Lng()))
	}
	path := fmt.Sprintf("/routing/1/calculateRoute/%s/json", strings.Join(locs, ":"))

	resp, err := p.get(ctx, path, map[string]string{"routeRepresentation": "polyline"})
	if err != nil {
		return nil, fmt.Errorf("tomtom route: %w", err)
	}
	defer resp.Body.Close()

	var decoded tomtomRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode tomtom route response: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return nil, ports.ErrNoResult
	}
	return &decoded, nil
}

func (p *TomTomProvider) Pair(ctx context.Context, origin kernel.GeoPoint, destination kernel.GeoPoint) (kernel.Leg, error) {
	decoded, err := p.route(ctx, []kernel.GeoPoint{origin, destination})
	if err != nil {
		return kernel.Leg{}, err
	}

	s := decoded.Routes[0].Summary
	return kernel.Leg{
		DistanceM: int(math.Round(s.LengthInMeters)),
		DurationS: int(math.Round(s.TravelTimeInSeconds)),
	}, nil
}

func (p *TomTomProvider) Geometry(ctx context.Context, waypoints []kernel.GeoPoint) ([]kernel.GeoPoint, error) {
	decoded, err := p.route(ctx, waypoints)
	if err != nil {
		return nil, err
	}

	var points []kernel.GeoPoint
	for _, leg := range decoded.Routes[0].Legs {
		for _, raw := range leg.Points {
			pt, err := kernel.NewGeoPoint(raw.Latitude, raw.Longitude)
			if err != nil {
				return nil, fmt.Errorf("invalid point in tomtom route: %w", err)
			}
			points = append(points, pt)
		}
	}
	if len(points) == 0 {
		return nil, ports.ErrNoResult
	}
	return points, nil
}
