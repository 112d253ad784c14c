// Package airnow queries the AirNow observation API for monitors inside
// a bounding box.
package airnow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wgraba/airquality/internal/domain"
)

// missingValue is AirNow's sentinel for missing or invalid data.
const missingValue = -999

// utcLayout is AirNow's observation timestamp format, always UTC with no
// zone suffix, e.g. "2024-04-26T15:00".
const utcLayout = "2006-01-02T15:04"

// Client implements pipeline.MonitorSource against the AirNow data query API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an AirNow query client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://www.airnowapi.org/aq/data/",
		logger:     logger,
	}
}

// Observations fetches the current ozone, PM2.5, and PM10 readings for
// all permanent monitors inside box. Records the API returns malformed
// are logged and skipped rather than failing the whole query.
func (c *Client) Observations(ctx context.Context, box domain.BoundingBox) ([]domain.Observation, error) {
	params := url.Values{
		"parameters":               {"OZONE,PM25,PM10"},
		"BBOX":                     {fmt.Sprintf("%f,%f,%f,%f", box.MinLon, box.MinLat, box.MaxLon, box.MaxLat)},
		"monitorType":              {"0"}, // permanent monitors only
		"dataType":                 {"B"}, // concentrations and AQI
		"format":                   {"application/json"},
		"verbose":                  {"1"},
		"includerawconcentrations": {"1"},
		"API_KEY":                  {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("airnow request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("airnow API error: status %d: %s", resp.StatusCode, body)
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	observations := make([]domain.Observation, 0, len(records))
	for _, rec := range records {
		obs, err := rec.toObservation()
		if err != nil {
			c.logger.Warn("skipping malformed observation", "site", rec.SiteName, "error", err)
			continue
		}
		observations = append(observations, obs)
	}

	c.logger.Debug("fetched observations", "count", len(observations))
	return observations, nil
}

// AirNow API response types (verbose=1 adds SiteName and agency fields).

type record struct {
	Latitude         float64 `json:"Latitude"`
	Longitude        float64 `json:"Longitude"`
	UTC              string  `json:"UTC"`
	Parameter        string  `json:"Parameter"`
	Unit             string  `json:"Unit"`
	AQI              int     `json:"AQI"`
	Value            float64 `json:"Value"`
	RawConcentration float64 `json:"RawConcentration"`
	SiteName         string  `json:"SiteName"`
}

func (r record) toObservation() (domain.Observation, error) {
	monitor, err := domain.NewCoordinate(r.Latitude, r.Longitude)
	if err != nil {
		return domain.Observation{}, err
	}

	observedAt, err := time.ParseInLocation(utcLayout, r.UTC, time.UTC)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("parse observation time %q: %w", r.UTC, err)
	}

	var concentration *float64
	if r.Value != missingValue {
		v := r.Value
		concentration = &v
	}

	return domain.Observation{
		Site:             r.SiteName,
		Monitor:          monitor,
		Pollutant:        domain.Pollutant(r.Parameter),
		AQI:              r.AQI,
		Concentration:    concentration,
		RawConcentration: r.RawConcentration,
		Unit:             r.Unit,
		ObservedAt:       observedAt,
	}, nil
}
