package service

import (
	"fmt"
	"math"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

const (
	earthRadiusMeters = 6371000

	// stationaryRadiusMeters is the displacement under which a tourist is
	// considered not to have moved between samples.
	stationaryRadiusMeters = 15
)

// TrackerConfig bounds what the tracker accepts and retains.
type TrackerConfig struct {
	// MaxAccuracy rejects fixes noisier than this many meters.
	MaxAccuracy float64
	// MaxSpeed rejects samples implying movement faster than this, in m/s.
	MaxSpeed float64
	// SuddenStopGap is the elapsed time beyond which a near-zero displacement
	// counts as a sudden stop rather than a route deviation.
	SuddenStopGap time.Duration
	// Capacity is the history ring buffer size; oldest samples are evicted.
	Capacity int
}

func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxAccuracy:   100,
		MaxSpeed:      50,
		SuddenStopGap: 5 * time.Minute,
		Capacity:      100,
	}
}

// Tracker validates and normalizes raw position samples for one tourist
// session. Accepted samples are appended to a fixed-capacity ring buffer.
// The tracker touches no network or storage; persistence happens upstream.
// Not safe for concurrent use; the owning session serializes access.
type Tracker struct {
	cfg       TrackerConfig
	touristID string

	history []domain.LocationSample
	head    int
	size    int
}

func NewTracker(touristID string, cfg TrackerConfig) *Tracker {
	def := DefaultTrackerConfig()
	if cfg.MaxAccuracy <= 0 {
		cfg.MaxAccuracy = def.MaxAccuracy
	}
	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = def.MaxSpeed
	}
	if cfg.SuddenStopGap <= 0 {
		cfg.SuddenStopGap = def.SuddenStopGap
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	return &Tracker{
		cfg:       cfg,
		touristID: touristID,
		history:   make([]domain.LocationSample, cfg.Capacity),
	}
}

// Submit validates one sample. A nil error means the sample was accepted and
// appended to history. ErrImplausibleJump additionally returns a low-severity
// anomaly candidate for the alert pipeline.
func (t *Tracker) Submit(s domain.LocationSample) (*domain.AnomalyCandidate, error) {
	if s.Accuracy > t.cfg.MaxAccuracy {
		return nil, fmt.Errorf("%w: %.0fm > %.0fm", ErrLowAccuracy, s.Accuracy, t.cfg.MaxAccuracy)
	}

	if last, ok := t.Latest(); ok {
		if !s.Timestamp.After(last.Timestamp) {
			return nil, ErrOutOfOrder
		}
		elapsed := s.Timestamp.Sub(last.Timestamp)
		dist := haversine(last.Lat, last.Lon, s.Lat, s.Lon)

		if dist/elapsed.Seconds() > t.cfg.MaxSpeed {
			anomaly := &domain.AnomalyCandidate{
				TouristID: t.touristID,
				Kind:      domain.AnomalyRouteDeviation,
				Sample:    s,
			}
			return anomaly, ErrImplausibleJump
		}

		// Near-zero displacement over an unusually long gap: the sample is
		// fine, but the standstill itself is an anomaly candidate.
		if elapsed > t.cfg.SuddenStopGap && dist <= stationaryRadiusMeters {
			t.append(s)
			return &domain.AnomalyCandidate{
				TouristID: t.touristID,
				Kind:      domain.AnomalySuddenStop,
				Sample:    s,
			}, nil
		}
	}

	t.append(s)
	return nil, nil
}

func (t *Tracker) append(s domain.LocationSample) {
	t.history[t.head] = s
	t.head = (t.head + 1) % len(t.history)
	if t.size < len(t.history) {
		t.size++
	}
}

// Latest returns the most recently accepted sample.
func (t *Tracker) Latest() (domain.LocationSample, bool) {
	if t.size == 0 {
		return domain.LocationSample{}, false
	}
	idx := (t.head - 1 + len(t.history)) % len(t.history)
	return t.history[idx], true
}

// History returns retained samples, oldest first.
func (t *Tracker) History() []domain.LocationSample {
	out := make([]domain.LocationSample, 0, t.size)
	start := (t.head - t.size + len(t.history)) % len(t.history)
	for i := 0; i < t.size; i++ {
		out = append(out, t.history[(start+i)%len(t.history)])
	}
	return out
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
