package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

type signalSourceMock struct {
	crowdFn   func(ctx context.Context, lat, lon float64) (float64, error)
	weatherFn func(ctx context.Context, lat, lon float64) (float64, error)
}

func (m *signalSourceMock) CrowdDensity(ctx context.Context, lat, lon float64) (float64, error) {
	return m.crowdFn(ctx, lat, lon)
}

func (m *signalSourceMock) Weather(ctx context.Context, lat, lon float64) (float64, error) {
	return m.weatherFn(ctx, lat, lon)
}

type incidentReaderMock struct {
	timesFn func(ctx context.Context, cell string, since time.Time) ([]time.Time, error)
}

func (m *incidentReaderMock) IncidentTimes(ctx context.Context, cell string, since time.Time) ([]time.Time, error) {
	return m.timesFn(ctx, cell, since)
}

var _ SignalSource = (*signalSourceMock)(nil)
var _ IncidentDensityReader = (*incidentReaderMock)(nil)

func noSignals() *signalSourceMock {
	missing := errors.New("no signal")
	return &signalSourceMock{
		crowdFn:   func(context.Context, float64, float64) (float64, error) { return 0, missing },
		weatherFn: func(context.Context, float64, float64) (float64, error) { return 0, missing },
	}
}

func noIncidents() *incidentReaderMock {
	return &incidentReaderMock{
		timesFn: func(context.Context, string, time.Time) ([]time.Time, error) { return nil, nil },
	}
}

func TestCombineKnownFactors(t *testing.T) {
	f := domain.ScoreFactors{
		LocationSafety:      80,
		TimeOfDay:           60,
		CrowdDensity:        50,
		WeatherConditions:   90,
		HistoricalIncidents: 70,
	}
	got := Combine(f, domain.DefaultScoreWeights())
	if math.Abs(got-70) > 1e-9 {
		t.Errorf("Combine = %v, want 70", got)
	}
}

func TestCombineStaysInBounds(t *testing.T) {
	w := domain.DefaultScoreWeights()
	cases := []domain.ScoreFactors{
		{},
		{LocationSafety: 100, TimeOfDay: 100, CrowdDensity: 100, WeatherConditions: 100, HistoricalIncidents: 100},
		{LocationSafety: -500, TimeOfDay: 1000, CrowdDensity: 50, WeatherConditions: -1, HistoricalIncidents: 101},
	}
	for _, f := range cases {
		got := Combine(f, w)
		if got < 0 || got > 100 {
			t.Errorf("Combine(%+v) = %v, out of [0,100]", f, got)
		}
	}
}

func TestCombineClampsOutOfRangeInputs(t *testing.T) {
	f := domain.ScoreFactors{
		LocationSafety:      150, // clamps to 100
		TimeOfDay:           -20, // clamps to 0
		CrowdDensity:        50,
		WeatherConditions:   50,
		HistoricalIncidents: 50,
	}
	got := Combine(f, domain.DefaultScoreWeights())
	want := 100*0.30 + 0*0.20 + 50*0.20 + 50*0.15 + 50*0.15
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Combine = %v, want %v", got, want)
	}
}

func TestTimeOfDayFactor(t *testing.T) {
	cases := []struct {
		hour int
		want float64
	}{
		{12, 95},
		{8, 95},
		{17, 95},
		{19, 75},
		{7, 70},
		{23, 40},
		{3, 40},
	}
	for _, tc := range cases {
		at := time.Date(2025, 6, 1, tc.hour, 30, 0, 0, time.UTC)
		if got := TimeOfDayFactor(at); got != tc.want {
			t.Errorf("TimeOfDayFactor(hour=%d) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestRecomputeMissingSignalsDefaultNeutral(t *testing.T) {
	svc := NewScoreService(noSignals(), noIncidents(), domain.DefaultScoreWeights())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	score := svc.Recompute(context.Background(), geoSample(15.29, 74.12), nil)

	if score.Factors.CrowdDensity != neutralSignal {
		t.Errorf("missing crowd signal must default to %d, got %v", neutralSignal, score.Factors.CrowdDensity)
	}
	if score.Factors.WeatherConditions != neutralSignal {
		t.Errorf("missing weather signal must default to %d, got %v", neutralSignal, score.Factors.WeatherConditions)
	}
	if score.Overall < 0 || score.Overall > 100 {
		t.Errorf("overall %v out of bounds", score.Overall)
	}
}

func TestRecomputeZonePriorityDrivesLocationSafety(t *testing.T) {
	svc := NewScoreService(noSignals(), noIncidents(), domain.DefaultScoreWeights())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	restricted := squareZone("r", domain.ZoneRestricted, "")
	safe := squareZone("s", domain.ZoneSafe, "")

	inRestricted := svc.Recompute(context.Background(), geoSample(5, 5), &restricted)
	inSafe := svc.Recompute(context.Background(), geoSample(5, 5), &safe)
	outside := svc.Recompute(context.Background(), geoSample(5, 5), nil)

	if inRestricted.Factors.LocationSafety != 10 {
		t.Errorf("restricted zone location safety = %v, want 10", inRestricted.Factors.LocationSafety)
	}
	if inSafe.Factors.LocationSafety != 90 {
		t.Errorf("safe zone location safety = %v, want 90", inSafe.Factors.LocationSafety)
	}
	if outside.Factors.LocationSafety != 75 {
		t.Errorf("no-zone location safety = %v, want 75", outside.Factors.LocationSafety)
	}
	if !(inSafe.Overall > outside.Overall && outside.Overall > inRestricted.Overall) {
		t.Errorf("expected safe > none > restricted, got %v / %v / %v",
			inSafe.Overall, outside.Overall, inRestricted.Overall)
	}
}

func TestRecomputeIncidentsDepressHistoryFactor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	incidents := &incidentReaderMock{
		timesFn: func(ctx context.Context, cell string, since time.Time) ([]time.Time, error) {
			// Two fresh incidents in the cell.
			return []time.Time{now.Add(-time.Hour), now.Add(-2 * time.Hour)}, nil
		},
	}
	svc := NewScoreService(noSignals(), incidents, domain.DefaultScoreWeights())
	svc.now = func() time.Time { return now }

	score := svc.Recompute(context.Background(), geoSample(15.29, 74.12), nil)
	clean := NewScoreService(noSignals(), noIncidents(), domain.DefaultScoreWeights())
	clean.now = svc.now
	baseline := clean.Recompute(context.Background(), geoSample(15.29, 74.12), nil)

	if score.Factors.HistoricalIncidents >= baseline.Factors.HistoricalIncidents {
		t.Errorf("incidents must depress the history factor: %v >= %v",
			score.Factors.HistoricalIncidents, baseline.Factors.HistoricalIncidents)
	}
	if score.Overall >= baseline.Overall {
		t.Errorf("incidents must depress the overall score: %v >= %v", score.Overall, baseline.Overall)
	}
}

func TestRecomputeIncidentLookupFailureIsNeutral(t *testing.T) {
	incidents := &incidentReaderMock{
		timesFn: func(context.Context, string, time.Time) ([]time.Time, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewScoreService(noSignals(), incidents, domain.DefaultScoreWeights())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	score := svc.Recompute(context.Background(), geoSample(15.29, 74.12), nil)
	if score.Factors.HistoricalIncidents != 100 {
		t.Errorf("failed incident lookup must not depress the factor, got %v", score.Factors.HistoricalIncidents)
	}
}
