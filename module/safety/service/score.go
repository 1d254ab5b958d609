package service

import (
	"context"
	"math"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

// SignalSource supplies environmental [0,100] signals for a location.
// An ErrNoSignal-style miss is not fatal; the factor defaults to neutral.
type SignalSource interface {
	CrowdDensity(ctx context.Context, lat, lon float64) (float64, error)
	Weather(ctx context.Context, lat, lon float64) (float64, error)
}

// IncidentDensityReader looks up historical incident timestamps near a
// location, keyed by grid cell.
type IncidentDensityReader interface {
	IncidentTimes(ctx context.Context, cell string, since time.Time) ([]time.Time, error)
}

// neutralSignal substitutes for an absent crowd or weather signal.
const neutralSignal = 50

// incidentHalfLife controls how quickly past incidents stop depressing the
// historical-incidents factor.
const incidentHalfLife = 7 * 24 * time.Hour

// incidentLookback bounds the density query window.
const incidentLookback = 90 * 24 * time.Hour

// ScoreService derives the composite safety score. Recompute is a pure
// function of the factor snapshot it gathers; it never mutates shared state.
type ScoreService struct {
	signals   SignalSource
	incidents IncidentDensityReader
	weights   domain.ScoreWeights
	now       func() time.Time
}

func NewScoreService(signals SignalSource, incidents IncidentDensityReader, weights domain.ScoreWeights) *ScoreService {
	return &ScoreService{
		signals:   signals,
		incidents: incidents,
		weights:   weights,
		now:       time.Now,
	}
}

// Recompute gathers all five factors for the session's current position and
// highest-priority zone, and returns a fresh score. The previous score is
// replaced wholesale by the caller.
func (s *ScoreService) Recompute(ctx context.Context, sample domain.LocationSample, topZone *domain.GeofenceZone) domain.SafetyScore {
	now := s.now()
	cell := domain.GridCell(sample.Lat, sample.Lon)

	decayed := s.decayedIncidentCount(ctx, cell, now)

	factors := domain.ScoreFactors{
		LocationSafety:      locationSafety(topZone, decayed),
		TimeOfDay:           TimeOfDayFactor(now),
		CrowdDensity:        s.signal(ctx, sample, s.signals.CrowdDensity),
		WeatherConditions:   s.signal(ctx, sample, s.signals.Weather),
		HistoricalIncidents: clampFactor(100 - 20*decayed),
	}

	return domain.SafetyScore{
		Overall:     Combine(factors, s.weights),
		Factors:     factors,
		LastUpdated: now,
	}
}

// Combine is the fixed-weight linear combination of factors, clamped so the
// overall value stays in [0,100] for any in-range inputs.
func Combine(f domain.ScoreFactors, w domain.ScoreWeights) float64 {
	f = domain.ScoreFactors{
		LocationSafety:      clampFactor(f.LocationSafety),
		TimeOfDay:           clampFactor(f.TimeOfDay),
		CrowdDensity:        clampFactor(f.CrowdDensity),
		WeatherConditions:   clampFactor(f.WeatherConditions),
		HistoricalIncidents: clampFactor(f.HistoricalIncidents),
	}
	overall := f.LocationSafety*w.LocationSafety +
		f.TimeOfDay*w.TimeOfDay +
		f.CrowdDensity*w.CrowdDensity +
		f.WeatherConditions*w.WeatherConditions +
		f.HistoricalIncidents*w.HistoricalIncidents
	return clampFactor(overall)
}

// TimeOfDayFactor is a deterministic curve over the local hour: full score
// through the day, reduced during evening and overnight hours.
func TimeOfDayFactor(t time.Time) float64 {
	switch h := t.Hour(); {
	case h >= 8 && h < 18:
		return 95
	case h >= 18 && h < 22:
		return 75
	case h >= 6 && h < 8:
		return 70
	default: // 22:00-06:00
		return 40
	}
}

func locationSafety(topZone *domain.GeofenceZone, decayedIncidents float64) float64 {
	base := 75.0
	if topZone != nil {
		switch topZone.Priority() {
		case 4: // restricted
			base = 10
		case 3: // risk high
			base = 20
		case 2:
			base = 40
		case 1:
			base = 60
		default: // safe zone
			base = 90
		}
	}
	return clampFactor(base - 5*decayedIncidents)
}

func (s *ScoreService) signal(ctx context.Context, sample domain.LocationSample, fetch func(context.Context, float64, float64) (float64, error)) float64 {
	v, err := fetch(ctx, sample.Lat, sample.Lon)
	if err != nil {
		return neutralSignal
	}
	return clampFactor(v)
}

// decayedIncidentCount weighs each past incident by exponential decay, so
// recent incidents count more than old ones.
func (s *ScoreService) decayedIncidentCount(ctx context.Context, cell string, now time.Time) float64 {
	times, err := s.incidents.IncidentTimes(ctx, cell, now.Add(-incidentLookback))
	if err != nil {
		return 0
	}
	var total float64
	for _, ts := range times {
		age := now.Sub(ts)
		if age < 0 {
			age = 0
		}
		total += math.Exp2(-age.Hours() / incidentHalfLife.Hours())
	}
	return total
}

func clampFactor(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
