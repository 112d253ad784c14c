package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the poll cycle. They are
// only served when the tool runs in poll mode, but are recorded
// unconditionally so single runs stay on the same code path.
type Metrics struct {
	Polls               prometheus.Counter
	PollErrors          *prometheus.CounterVec // labels: stage={geocode,query,emit}
	PollDuration        prometheus.Histogram
	ObservationsFetched prometheus.Counter
	ReadingsSelected    prometheus.Gauge

	// Per-pollutant gauges from the most recent successful cycle.
	AQI               *prometheus.GaugeVec // labels: pollutant
	MonitorDistanceMi *prometheus.GaugeVec // labels: pollutant
}

// NewMetrics creates and registers all poll metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airquality",
			Name:      "polls_total",
			Help:      "Total poll cycles started.",
		}),
		PollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airquality",
			Name:      "poll_errors_total",
			Help:      "Poll cycle failures by pipeline stage.",
		}, []string{"stage"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airquality",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete geocode-query-select-emit cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airquality",
			Name:      "observations_fetched_total",
			Help:      "Total raw monitor observations returned by AirNow.",
		}),
		ReadingsSelected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airquality",
			Name:      "readings_selected",
			Help:      "Selected readings in the most recent cycle.",
		}),
		AQI: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "airquality",
			Name:      "aqi",
			Help:      "AQI of the closest monitor, by pollutant.",
		}, []string{"pollutant"}),
		MonitorDistanceMi: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "airquality",
			Name:      "monitor_distance_miles",
			Help:      "Distance to the closest monitor, by pollutant.",
		}, []string{"pollutant"}),
	}

	prometheus.MustRegister(
		m.Polls,
		m.PollErrors,
		m.PollDuration,
		m.ObservationsFetched,
		m.ReadingsSelected,
		m.AQI,
		m.MonitorDistanceMi,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests do not panic with "already registered".
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Polls:               prometheus.NewCounter(prometheus.CounterOpts{Namespace: "airquality", Name: "polls_total"}),
		PollErrors:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "airquality", Name: "poll_errors_total"}, []string{"stage"}),
		PollDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "airquality", Name: "poll_duration_seconds"}),
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "airquality", Name: "observations_fetched_total"}),
		ReadingsSelected:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "airquality", Name: "readings_selected"}),
		AQI:                 prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "airquality", Name: "aqi"}, []string{"pollutant"}),
		MonitorDistanceMi:   prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "airquality", Name: "monitor_distance_miles"}, []string{"pollutant"}),
	}
}
