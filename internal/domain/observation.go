package domain

import "time"

// Pollutant identifies a measured air contaminant category, using the
// names AirNow reports in its Parameter field.
type Pollutant string

const (
	PollutantOzone Pollutant = "OZONE"
	PollutantPM25  Pollutant = "PM2.5"
	PollutantPM10  Pollutant = "PM10"
)

// Observation is one monitor's reading for one pollutant, as returned by
// an AirNow bounding-box query. Concentration is nil when the monitor
// reported no usable value (AirNow's -999 sentinel).
type Observation struct {
	Site             string
	Monitor          Coordinate
	Pollutant        Pollutant
	AQI              int
	Concentration    *float64
	RawConcentration float64
	Unit             string
	ObservedAt       time.Time
}

// SelectedReading is the closest monitor's reading for one pollutant,
// annotated with its distance from the query origin. Created during
// selection and consumed immediately by the output sinks; nothing in
// this system persists it.
type SelectedReading struct {
	Pollutant        Pollutant
	Site             string
	Monitor          Coordinate
	AQI              int
	Concentration    float64
	RawConcentration float64
	Unit             string
	DistanceMi       float64
	ObservedAt       time.Time
	SelectedAt       time.Time
}
