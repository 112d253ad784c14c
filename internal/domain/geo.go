package domain

import (
	"fmt"
	"math"

	"github.com/umahmood/haversine"
)

// milesPerDegreeLat is the mean length of one degree of latitude.
const milesPerDegreeLat = 69.0

// minCosLat guards the longitude-delta division where cos(latitude)
// underflows near the poles. AirNow's monitor network does not extend
// there, but the math must not divide by zero.
const minCosLat = 1e-6

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lon float64
}

// NewCoordinate validates that lat is in [-90, 90] and lon in [-180, 180].
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinate{}, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, lat, lon)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// BoundingBox is a rectangular lat/lon region. Min <= Max on both axes.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundingBoxAround computes the box spanning origin ± radiusMiles on
// each axis. The latitude delta is constant; the longitude delta grows
// with cos(latitude) to account for meridian convergence.
func BoundingBoxAround(origin Coordinate, radiusMiles float64) (BoundingBox, error) {
	if radiusMiles <= 0 {
		return BoundingBox{}, fmt.Errorf("%w: %v", ErrInvalidRadius, radiusMiles)
	}
	if _, err := NewCoordinate(origin.Lat, origin.Lon); err != nil {
		return BoundingBox{}, err
	}

	latDelta := radiusMiles / milesPerDegreeLat

	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	lonDelta := radiusMiles / (milesPerDegreeLat * cosLat)

	return BoundingBox{
		MinLat: origin.Lat - latDelta,
		MaxLat: origin.Lat + latDelta,
		MinLon: origin.Lon - lonDelta,
		MaxLon: origin.Lon + lonDelta,
	}, nil
}

// DistanceMiles returns the great-circle distance between two coordinates.
func DistanceMiles(a, b Coordinate) float64 {
	mi, _ := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return mi
}
