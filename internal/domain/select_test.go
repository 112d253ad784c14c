package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrigin = Coordinate{Lat: 40.0, Lon: -105.0}

// monitorAt returns a coordinate roughly miles north of the test origin.
func monitorAt(miles float64) Coordinate {
	return Coordinate{Lat: testOrigin.Lat + miles/69.0, Lon: testOrigin.Lon}
}

func conc(v float64) *float64 { return &v }

func observation(p Pollutant, miles float64, value *float64, observedAt time.Time) Observation {
	return Observation{
		Site:          "test-site",
		Monitor:       monitorAt(miles),
		Pollutant:     p,
		AQI:           42,
		Concentration: value,
		Unit:          "UG/M3",
		ObservedAt:    observedAt,
	}
}

func TestNearestByPollutant_PicksClosestPerPollutant(t *testing.T) {
	observedAt := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)

	observations := []Observation{
		observation(PollutantPM25, 12, conc(5.0), observedAt),
		observation(PollutantPM25, 3, conc(7.2), observedAt),
		observation(PollutantOzone, 20, conc(0.04), observedAt),
	}

	selected := NearestByPollutant(testOrigin, observations)
	require.Len(t, selected, 2)

	pm25 := selected[PollutantPM25]
	assert.Equal(t, 7.2, pm25.Concentration)
	assert.InDelta(t, 3.0, pm25.DistanceMi, 0.1)

	ozone := selected[PollutantOzone]
	assert.Equal(t, 0.04, ozone.Concentration)
	assert.InDelta(t, 20.0, ozone.DistanceMi, 0.1)
}

func TestNearestByPollutant_SelectedDistanceIsMinimum(t *testing.T) {
	observedAt := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	distances := []float64{18, 4, 9, 27, 4.5}

	observations := make([]Observation, 0, len(distances))
	for _, d := range distances {
		observations = append(observations, observation(PollutantPM10, d, conc(d), observedAt))
	}

	selected := NearestByPollutant(testOrigin, observations)
	require.Contains(t, selected, PollutantPM10)

	best := selected[PollutantPM10]
	for _, obs := range observations {
		assert.LessOrEqual(t, best.DistanceMi, DistanceMiles(testOrigin, obs.Monitor))
	}
}

func TestNearestByPollutant_ExcludesMissingValues(t *testing.T) {
	observedAt := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)

	// The only PM2.5 monitor has no usable value: empty result, no error.
	selected := NearestByPollutant(testOrigin, []Observation{
		observation(PollutantPM25, 5, nil, observedAt),
	})
	assert.Empty(t, selected)
}

func TestNearestByPollutant_MissingValueDoesNotShadowFartherMonitor(t *testing.T) {
	observedAt := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)

	selected := NearestByPollutant(testOrigin, []Observation{
		observation(PollutantPM25, 2, nil, observedAt),
		observation(PollutantPM25, 15, conc(6.1), observedAt),
		observation(PollutantOzone, 8, nil, observedAt),
	})

	require.Len(t, selected, 1)
	assert.Equal(t, 6.1, selected[PollutantPM25].Concentration)
	assert.InDelta(t, 15.0, selected[PollutantPM25].DistanceMi, 0.1)
}

func TestNearestByPollutant_EqualDistanceTieBrokenByRecency(t *testing.T) {
	older := time.Date(2024, 4, 26, 14, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)

	stale := observation(PollutantOzone, 6, conc(0.03), older)
	fresh := observation(PollutantOzone, 6, conc(0.05), newer)

	// The more recent reading wins regardless of input order.
	for _, observations := range [][]Observation{
		{stale, fresh},
		{fresh, stale},
	} {
		selected := NearestByPollutant(testOrigin, observations)
		require.Contains(t, selected, PollutantOzone)
		assert.Equal(t, 0.05, selected[PollutantOzone].Concentration)
		assert.Equal(t, newer, selected[PollutantOzone].ObservedAt)
	}
}

func TestNearestByPollutant_EqualDistanceAndTimeKeepsFirst(t *testing.T) {
	observedAt := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)

	first := observation(PollutantPM10, 6, conc(11.0), observedAt)
	second := observation(PollutantPM10, 6, conc(22.0), observedAt)

	selected := NearestByPollutant(testOrigin, []Observation{first, second})
	assert.Equal(t, 11.0, selected[PollutantPM10].Concentration)
}

func TestNearestByPollutant_Idempotent(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 16, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	observedAt := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	observations := []Observation{
		observation(PollutantPM25, 12, conc(5.0), observedAt),
		observation(PollutantPM25, 3, conc(7.2), observedAt),
		observation(PollutantOzone, 20, conc(0.04), observedAt),
		observation(PollutantPM10, 7, nil, observedAt),
	}

	first := NearestByPollutant(testOrigin, observations)
	second := NearestByPollutant(testOrigin, observations)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("selection not idempotent (-first +second):\n%s", diff)
	}
}

func TestNearestByPollutant_SelectedAtComesFromClock(t *testing.T) {
	frozen := time.Date(2024, 4, 26, 16, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	observedAt := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	selected := NearestByPollutant(testOrigin, []Observation{
		observation(PollutantOzone, 5, conc(0.04), observedAt),
	})

	require.Contains(t, selected, PollutantOzone)
	assert.Equal(t, frozen, selected[PollutantOzone].SelectedAt)
}

func TestNearestByPollutant_EmptyInput(t *testing.T) {
	assert.Empty(t, NearestByPollutant(testOrigin, nil))
}
