package geo_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"routing/internal/adapters/out/geo"
	"routing/internal/core/domain/model/kernel"
	"routing/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogle(t *testing.T, baseURL string) *geo.GoogleProvider {
	t.Helper()
	provider, err := geo.NewGoogleProvider(geo.GoogleConfig{APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)
	return provider
}

func TestGoogleProvider_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":40.7128,"lng":-74.006}}}]}`))
	}))
	defer srv.Close()

	point, err := newGoogle(t, srv.URL).Resolve(t.Context(), "New York")
	require.NoError(t, err)
	assert.InDelta(t, 40.7128, point.Lat(), 1e-9)
	assert.InDelta(t, -74.006, point.Lng(), 1e-9)
}

func TestGoogleProvider_Resolve_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	_, err := newGoogle(t, srv.URL).Resolve(t.Context(), "nowhere")
	assert.ErrorIs(t, err, ports.ErrNoResult)
}

func TestGoogleProvider_Pair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[` +
			`{"status":"OK","distance":{"value":2100},"duration":{"value":240}}]}]}`))
	}))
	defer srv.Close()

	leg, err := newGoogle(t, srv.URL).Pair(t.Context(), mustPoint(t, 1, 1), mustPoint(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, kernel.Leg{DistanceM: 2100, DurationS: 240}, leg)
}

func TestGoogleProvider_Pair_Unroutable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`))
	}))
	defer srv.Close()

	_, err := newGoogle(t, srv.URL).Pair(t.Context(), mustPoint(t, 1, 1), mustPoint(t, 2, 2))
	assert.ErrorIs(t, err, ports.ErrNoResult)
}

func TestGoogleProvider_Geometry_DecodesPolyline(t *testing.T) {
	// "_p~iF~ps|U_ulLnnqC" is the documented example encoding of
	// (38.5,-120.2) and (40.7,-120.95).
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/maps/api/directions/json", r.URL.Path)
		w.Write([]byte(`{"status":"OK","routes":[{"overview_polyline":{"points":"_p~iF~ps|U_ulLnnqC"}}]}`))
	}))
	defer srv.Close()

	points, err := newGoogle(t, srv.URL).Geometry(t.Context(), []kernel.GeoPoint{mustPoint(t, 38.5, -120.2), mustPoint(t, 40.7, -120.95)})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 38.5, points[0].Lat(), 1e-5)
	assert.InDelta(t, -120.2, points[0].Lng(), 1e-5)
	assert.InDelta(t, 40.7, points[1].Lat(), 1e-5)
	assert.InDelta(t, -120.95, points[1].Lng(), 1e-5)
}
