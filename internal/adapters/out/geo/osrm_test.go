package geo_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"routing/internal/adapters/out/geo"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSRMProvider_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Alexanderplatz 1, Berlin", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"lat":"52.5219","lon":"13.4132"}]`))
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{NominatimBaseURL: srv.URL})
	point, err := provider.Resolve(t.Context(), "Alexanderplatz 1, Berlin")
	require.NoError(t, err)
	assert.InDelta(t, 52.5219, point.Lat(), 1e-9)
	assert.InDelta(t, 13.4132, point.Lng(), 1e-9)
}

func TestOSRMProvider_Resolve_NoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{NominatimBaseURL: srv.URL})
	_, err := provider.Resolve(t.Context(), "nowhere")
	assert.ErrorIs(t, err, ports.ErrNoResult)
}

func TestOSRMProvider_Pair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/route/v1/driving/"))
		assert.Equal(t, "false", r.URL.Query().Get("overview"))
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":1532.4,"duration":187.6}]}`))
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{BaseURL: srv.URL})
	leg, err := provider.Pair(t.Context(), mustPoint(t, 52.52, 13.40), mustPoint(t, 52.53, 13.42))
	require.NoError(t, err)
	assert.Equal(t, kernel.Leg{DistanceM: 1532, DurationS: 188}, leg)
}

func TestOSRMProvider_Geometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":1000,"duration":100,` +
			`"geometry":{"coordinates":[[13.40,52.52],[13.41,52.525],[13.42,52.53]]}}]}`))
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{BaseURL: srv.URL})
	points, err := provider.Geometry(t.Context(), []kernel.GeoPoint{mustPoint(t, 52.52, 13.40), mustPoint(t, 52.53, 13.42)})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 52.525, points[1].Lat(), 1e-9)
	assert.InDelta(t, 13.41, points[1].Lng(), 1e-9)
}

func TestOSRMProvider_Matrix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/table/v1/driving/"))
		assert.Equal(t, "duration,distance", r.URL.Query().Get("annotations"))
		w.Write([]byte(`{"code":"Ok",` +
			`"durations":[[0,120],[130,0]],` +
			`"distances":[[0,1000],[1100,0]]}`))
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{BaseURL: srv.URL})
	matrix, err := provider.Matrix(t.Context(), []kernel.GeoPoint{mustPoint(t, 1, 1), mustPoint(t, 2, 2)})
	require.NoError(t, err)
	assert.Equal(t, kernel.Leg{DistanceM: 1000, DurationS: 120}, matrix.At(0, 1))
	assert.Equal(t, kernel.Leg{DistanceM: 1100, DurationS: 130}, matrix.At(1, 0))
}

func TestOSRMProvider_Matrix_NullCell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code":"Ok",` +
			`"durations":[[0,null],[130,0]],` +
			`"distances":[[0,1000],[1100,0]]}`))
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{BaseURL: srv.URL})
	_, err := provider.Matrix(t.Context(), []kernel.GeoPoint{mustPoint(t, 1, 1), mustPoint(t, 2, 2)})
	assert.ErrorIs(t, err, ports.ErrNoResult)
}

func TestOSRMProvider_RetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":500,"duration":60}]}`))
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{BaseURL: srv.URL})
	leg, err := provider.Pair(t.Context(), mustPoint(t, 1, 1), mustPoint(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, kernel.Leg{DistanceM: 500, DurationS: 60}, leg)
}

func TestOSRMProvider_DoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	provider := geo.NewOSRMProvider(geo.OSRMConfig{BaseURL: srv.URL})
	_, err := provider.Pair(t.Context(), mustPoint(t, 1, 1), mustPoint(t, 2, 2))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
