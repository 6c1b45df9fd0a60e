package geocoder

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/platform/circuit"
	"immersionfacile/pkg/platform/sentinel"
)

func TestHTTPGeocode(t *testing.T) {
	t.Run("reads the first feature", func(t *testing.T) {
		var query, limit, path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			query = r.URL.Query().Get("q")
			limit = r.URL.Query().Get("limit")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{"geometry":{"type":"Point","coordinates":[2.3522,48.8566]}}]}`))
		}))
		defer srv.Close()

		pos, err := NewHTTP(srv.URL+"/").Geocode(t.Context(), "30 avenue des champs elysées 75008 Paris")
		require.NoError(t, err)

		assert.Equal(t, geo.Position{Lat: 48.8566, Lon: 2.3522}, pos)
		assert.Equal(t, "/search/", path)
		assert.Equal(t, "30 avenue des champs elysées 75008 Paris", query)
		assert.Equal(t, "1", limit)
	})

	t.Run("no feature is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"features":[]}`))
		}))
		defer srv.Close()

		_, err := NewHTTP(srv.URL).Geocode(t.Context(), "nowhere")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("blank address is not found without calling out", func(t *testing.T) {
		_, err := NewHTTP("http://unused.invalid").Geocode(t.Context(), "  ")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("reports api errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad query", http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := NewHTTP(srv.URL).Geocode(t.Context(), "somewhere")
		assert.ErrorContains(t, err, "400")
	})

	t.Run("fails fast while the api keeps erroring", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		breaker := circuit.New("address-api", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
		g := NewHTTP(srv.URL, WithCircuitBreaker(breaker))

		_, err := g.Geocode(t.Context(), "a")
		assert.ErrorContains(t, err, "503")
		_, err = g.Geocode(t.Context(), "a")
		assert.ErrorContains(t, err, "503")
		_, err = g.Geocode(t.Context(), "a")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("unknown addresses do not open the circuit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"features":[]}`))
		}))
		defer srv.Close()

		breaker := circuit.New("address-api", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
		g := NewHTTP(srv.URL, WithCircuitBreaker(breaker))
		for range 3 {
			_, err := g.Geocode(t.Context(), "nowhere")
			assert.ErrorIs(t, err, sentinel.ErrNotFound)
		}
		assert.False(t, breaker.IsOpen())
	})
}

func TestStatic(t *testing.T) {
	g := NewStatic(geo.Position{Lat: 45.76, Lon: 4.83})

	pos, err := g.Geocode(t.Context(), "Lyon")
	require.NoError(t, err)
	assert.Equal(t, 45.76, pos.Lat)

	_, err = g.Geocode(t.Context(), "")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
