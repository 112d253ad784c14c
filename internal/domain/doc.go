// Package domain models AirNow air-quality monitor data and the
// nearest-monitor-per-pollutant selection over a bounding-box query.
//
// # Data Source
//
// Observations come from the AirNow API (https://docs.airnowapi.org/),
// queried with a latitude/longitude bounding box around an origin point.
// Each record is one monitor's current reading for one pollutant.
// Parameter names as reported by AirNow: "OZONE", "PM2.5", "PM10".
// Concentration units: PPB for ozone, UG/M3 for particulates.
//
// # Missing Data
//
// AirNow encodes missing or invalid values as -999. Such readings carry a
// nil Concentration here and are excluded from selection; a pollutant
// whose readings are all missing is simply absent from the result.
//
// # Geometry
//
// Bounding boxes are computed on a spherical Earth: one degree of
// latitude spans roughly 69 miles everywhere, while a degree of longitude
// spans 69*cos(latitude) miles, shrinking toward the poles. Monitor
// distances use the haversine great-circle formula in miles, matching
// the radius argument the user supplies.
package domain
