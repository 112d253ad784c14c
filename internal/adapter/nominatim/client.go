package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wgraba/airquality/internal/domain"
)

// userAgent identifies this tool to Nominatim, whose usage policy
// requires a meaningful User-Agent on every request.
const userAgent = "airquality (github.com/wgraba/airquality)"

// ErrNotFound is returned when a postal code resolves to no location.
var ErrNotFound = errors.New("postal code not found")

// Client implements pipeline.Geocoder using the OpenStreetMap Nominatim API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://nominatim.openstreetmap.org",
		logger:     logger,
	}
}

// Geocode resolves a US postal code to its coordinate.
func (c *Client) Geocode(ctx context.Context, postalCode string) (domain.Coordinate, error) {
	params := url.Values{
		"postalcode":   {postalCode},
		"countrycodes": {"us"},
		"format":       {"jsonv2"},
		"limit":        {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinate{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinate{}, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return domain.Coordinate{}, fmt.Errorf("%w: %s", ErrNotFound, postalCode)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return domain.Coordinate{}, fmt.Errorf("malformed coordinates in response: lat=%q lon=%q", places[0].Lat, places[0].Lon)
	}

	coord, err := domain.NewCoordinate(lat, lon)
	if err != nil {
		return domain.Coordinate{}, err
	}

	c.logger.Debug("geocoded postal code",
		"postal_code", postalCode,
		"lat", coord.Lat,
		"lon", coord.Lon,
		"display_name", places[0].DisplayName,
	)
	return coord, nil
}

// Nominatim API response types. Coordinates arrive as JSON strings.

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
