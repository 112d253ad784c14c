package domain

import "time"

// NearestByPollutant reduces a bounding-box query result to the closest
// monitor's reading per pollutant type.
//
// Observations without a usable concentration are excluded before the
// minimum is taken; a pollutant whose observations are all excluded is
// omitted from the result rather than reported as an error. Distance
// ties are broken by the most recent ObservedAt (AirNow can return
// co-located monitors with different staleness), and remaining ties by
// first occurrence in the input, so the result is deterministic for any
// ordering AirNow happens to return.
func NearestByPollutant(origin Coordinate, observations []Observation) map[Pollutant]SelectedReading {
	selected := make(map[Pollutant]SelectedReading)

	for _, obs := range observations {
		if obs.Concentration == nil {
			continue
		}

		dist := DistanceMiles(origin, obs.Monitor)
		if current, ok := selected[obs.Pollutant]; ok && !replaces(dist, obs.ObservedAt, current) {
			continue
		}

		selected[obs.Pollutant] = SelectedReading{
			Pollutant:        obs.Pollutant,
			Site:             obs.Site,
			Monitor:          obs.Monitor,
			AQI:              obs.AQI,
			Concentration:    *obs.Concentration,
			RawConcentration: obs.RawConcentration,
			Unit:             obs.Unit,
			DistanceMi:       dist,
			ObservedAt:       obs.ObservedAt,
			SelectedAt:       clock.Now().UTC(),
		}
	}

	return selected
}

// replaces reports whether a candidate at dist/observedAt beats the
// currently selected reading for its pollutant.
func replaces(dist float64, observedAt time.Time, current SelectedReading) bool {
	if dist != current.DistanceMi {
		return dist < current.DistanceMi
	}
	return observedAt.After(current.ObservedAt)
}
