// Package pipeline orchestrates the geocode, query, select, emit cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/wgraba/airquality/internal/domain"
	"github.com/wgraba/airquality/internal/observability"
)

// Geocoder resolves a postal code to an origin coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, postalCode string) (domain.Coordinate, error)
}

// MonitorSource fetches raw monitor observations inside a bounding box.
type MonitorSource interface {
	Observations(ctx context.Context, box domain.BoundingBox) ([]domain.Observation, error)
}

// Sink receives the selected readings of one cycle. Emit failures abort
// the cycle; sinks already emitted to are not rolled back.
type Sink interface {
	Emit(ctx context.Context, readings []domain.SelectedReading) error
}

// Error-counter stage labels.
const (
	stageGeocode = "geocode"
	stageQuery   = "query"
	stageEmit    = "emit"
)

// Runner executes cycles of the pipeline, either once or on a schedule.
type Runner struct {
	geocoder Geocoder
	source   MonitorSource
	sinks    []Sink
	logger   *slog.Logger
	metrics  *observability.Metrics

	postalCode string
	radiusMi   float64

	mu     sync.Mutex
	origin *domain.Coordinate

	ready atomic.Bool
}

// New creates a Runner for the given postal code and search radius.
func New(geocoder Geocoder, source MonitorSource, sinks []Sink, postalCode string, radiusMi float64, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		geocoder:   geocoder,
		source:     source,
		sinks:      sinks,
		logger:     logger,
		metrics:    metrics,
		postalCode: postalCode,
		radiusMi:   radiusMi,
	}
}

// CheckReadiness returns nil once a cycle has emitted readings.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no readings selected yet")
	}
	return nil
}

// RunOnce executes a single geocode-query-select-emit cycle. Finding no
// monitors with usable readings is logged, not an error: AirNow coverage
// is sparse in places and data gaps are routine.
func (r *Runner) RunOnce(ctx context.Context) error {
	start := time.Now()
	r.metrics.Polls.Inc()

	origin, err := r.resolveOrigin(ctx)
	if err != nil {
		r.metrics.PollErrors.WithLabelValues(stageGeocode).Inc()
		return fmt.Errorf("geocode %s: %w", r.postalCode, err)
	}

	box, err := domain.BoundingBoxAround(origin, r.radiusMi)
	if err != nil {
		r.metrics.PollErrors.WithLabelValues(stageQuery).Inc()
		return err
	}

	observations, err := r.source.Observations(ctx, box)
	if err != nil {
		r.metrics.PollErrors.WithLabelValues(stageQuery).Inc()
		return fmt.Errorf("query monitors: %w", err)
	}
	r.metrics.ObservationsFetched.Add(float64(len(observations)))

	selected := domain.NearestByPollutant(origin, observations)
	r.metrics.ReadingsSelected.Set(float64(len(selected)))
	if len(selected) == 0 {
		r.logger.Warn("no monitors with usable readings in range",
			"postal_code", r.postalCode,
			"radius_mi", r.radiusMi,
			"observations", len(observations),
		)
		return nil
	}

	readings := sortedReadings(selected)
	for _, reading := range readings {
		r.metrics.AQI.WithLabelValues(string(reading.Pollutant)).Set(float64(reading.AQI))
		r.metrics.MonitorDistanceMi.WithLabelValues(string(reading.Pollutant)).Set(reading.DistanceMi)
	}

	for _, sink := range r.sinks {
		if err := sink.Emit(ctx, readings); err != nil {
			r.metrics.PollErrors.WithLabelValues(stageEmit).Inc()
			return fmt.Errorf("emit readings: %w", err)
		}
	}

	r.metrics.PollDuration.Observe(time.Since(start).Seconds())
	r.ready.Store(true)
	r.logger.Info("cycle complete",
		"observations", len(observations),
		"readings", len(readings),
		"duration", time.Since(start),
	)
	return nil
}

// Poll runs cycles on a fixed interval until ctx is cancelled. Failures
// are logged and the next tick proceeds; AirNow refreshes hourly, so a
// lost cycle delays data rather than losing it.
func (r *Runner) Poll(ctx context.Context, interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).StartImmediately().Do(func() {
		if err := r.RunOnce(ctx); err != nil {
			r.logger.Error("poll cycle failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule poll job: %w", err)
	}

	r.logger.Info("polling started", "interval", interval, "postal_code", r.postalCode)
	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	r.logger.Info("polling stopped", "reason", ctx.Err())
	return nil
}

// resolveOrigin geocodes the postal code on the first call and reuses
// the result afterwards; monitors move, postal codes do not.
func (r *Runner) resolveOrigin(ctx context.Context) (domain.Coordinate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.origin != nil {
		return *r.origin, nil
	}

	origin, err := r.geocoder.Geocode(ctx, r.postalCode)
	if err != nil {
		return domain.Coordinate{}, err
	}
	r.origin = &origin
	return origin, nil
}

// sortedReadings flattens the selection map in pollutant order so sink
// output is stable from cycle to cycle.
func sortedReadings(selected map[domain.Pollutant]domain.SelectedReading) []domain.SelectedReading {
	readings := make([]domain.SelectedReading, 0, len(selected))
	for _, reading := range selected {
		readings = append(readings, reading)
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Pollutant < readings[j].Pollutant
	})
	return readings
}
