package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "80301", r.URL.Query().Get("postalcode"))
		assert.Equal(t, "us", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"40.049", "lon":"-105.240", "display_name":"Boulder, CO 80301"}]`))
	}))
	defer srv.Close()

	coord, err := testClient(srv.URL).Geocode(context.Background(), "80301")
	require.NoError(t, err)

	assert.InDelta(t, 40.049, coord.Lat, 0.001)
	assert.InDelta(t, -105.240, coord.Lon, 0.001)
}

func TestGeocode_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "00000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "00000")
}

func TestGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "80301")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeocode_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"not-a-number", "lon":"-105.240"}]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "80301")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed coordinates")
}

func TestGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &Client{
		httpClient: &http.Client{Timeout: 50 * time.Millisecond},
		baseURL:    srv.URL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := c.Geocode(context.Background(), "80301")
	require.Error(t, err)
}
