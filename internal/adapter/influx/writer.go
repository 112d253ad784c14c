// Package influx writes selected readings to InfluxDB as time-series points.
package influx

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/wgraba/airquality/internal/domain"
)

// Writer implements pipeline.Sink using the InfluxDB v2 blocking write API.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	org      string
	bucket   string
	logger   *slog.Logger
}

// NewWriter creates an InfluxDB sink. Close must be called when done.
func NewWriter(serverURL, token, org, bucket string, logger *slog.Logger) *Writer {
	client := influxdb2.NewClient(serverURL, token)
	return &Writer{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		org:      org,
		bucket:   bucket,
		logger:   logger,
	}
}

// Emit writes one point per reading in a single blocking call. A failed
// write surfaces immediately; readings already printed to the console
// are not rolled back, and nothing is retried.
func (w *Writer) Emit(ctx context.Context, readings []domain.SelectedReading) error {
	if len(readings) == 0 {
		return nil
	}

	points := make([]*write.Point, len(readings))
	for i, r := range readings {
		points[i] = toPoint(r)
	}

	if err := w.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write influxdb: %w", err)
	}

	w.logger.Debug("wrote readings", "count", len(readings), "org", w.org, "bucket", w.bucket)
	return nil
}

// Close releases the underlying HTTP client.
func (w *Writer) Close() {
	w.client.Close()
}

// toPoint builds a point with the pollutant type as the measurement and
// the monitor's identity as tags, timestamped at observation time.
func toPoint(r domain.SelectedReading) *write.Point {
	return influxdb2.NewPoint(
		string(r.Pollutant),
		map[string]string{
			"name":      r.Site,
			"latitude":  strconv.FormatFloat(r.Monitor.Lat, 'f', -1, 64),
			"longitude": strconv.FormatFloat(r.Monitor.Lon, 'f', -1, 64),
			"distance":  strconv.FormatFloat(r.DistanceMi, 'f', 2, 64),
			"units":     r.Unit,
		},
		map[string]interface{}{
			"AQI":               r.AQI,
			"Concentration":     r.Concentration,
			"Raw Concentration": r.RawConcentration,
		},
		r.ObservedAt,
	)
}
