package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/publisher"
)

// SessionConfig tunes the per-session pipeline.
type SessionConfig struct {
	Tracker TrackerConfig
	// ScoreInterval is the periodic safety-score recompute cadence.
	ScoreInterval time.Duration
	// ScoreDistance triggers a recompute when the tourist has moved this many
	// meters since the last one.
	ScoreDistance float64
	// ZoneAlertTTL expires zone violation alerts that were never cleared.
	ZoneAlertTTL time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Tracker:       DefaultTrackerConfig(),
		ScoreInterval: time.Minute,
		ScoreDistance: 250,
		ZoneAlertTTL:  30 * time.Minute,
	}
}

// session is the per-tourist state. All fields are guarded by mu; the lock
// serializes the evaluate/aggregate/alert pipeline with the periodic score
// recompute, giving hysteresis and dedup an ordered view. No lock is ever
// held across sessions.
type session struct {
	mu         sync.Mutex
	touristID  string
	tracker    *Tracker
	membership *domain.ZoneMembership

	score        *domain.SafetyScore
	lastScoreLoc *domain.LocationSample
}

// SessionRegistry owns one session per tracked tourist and drives samples
// through the tracker → geofence → alert → score pipeline.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session

	cfg      SessionConfig
	geofence *GeofenceService
	score    *ScoreService
	alerts   *AlertService
	pub      publisher.EventPublisher
	now      func() time.Time
}

func NewSessionRegistry(cfg SessionConfig, geofence *GeofenceService, score *ScoreService, alerts *AlertService, pub publisher.EventPublisher) *SessionRegistry {
	def := DefaultSessionConfig()
	if cfg.ScoreInterval <= 0 {
		cfg.ScoreInterval = def.ScoreInterval
	}
	if cfg.ScoreDistance <= 0 {
		cfg.ScoreDistance = def.ScoreDistance
	}
	if cfg.ZoneAlertTTL <= 0 {
		cfg.ZoneAlertTTL = def.ZoneAlertTTL
	}
	return &SessionRegistry{
		sessions: make(map[string]*session),
		cfg:      cfg,
		geofence: geofence,
		score:    score,
		alerts:   alerts,
		pub:      pub,
		now:      time.Now,
	}
}

func (r *SessionRegistry) get(touristID string) *session {
	r.mu.RLock()
	s, ok := r.sessions[touristID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[touristID]; ok {
		return s
	}
	s = &session{
		touristID:  touristID,
		tracker:    NewTracker(touristID, r.cfg.Tracker),
		membership: domain.NewZoneMembership(),
	}
	r.sessions[touristID] = s
	return s
}

// lookup never creates a session. Query paths use it so that probing an
// unknown tourist id cannot grow the registry.
func (r *SessionRegistry) lookup(touristID string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[touristID]
	return s, ok
}

// Process runs one sample through the session pipeline. Rejected samples
// return the rejection reason; the session state is untouched except that an
// implausible jump also files an anomaly alert.
func (r *SessionRegistry) Process(ctx context.Context, touristID string, sample domain.LocationSample) error {
	s := r.get(touristID)
	s.mu.Lock()
	defer s.mu.Unlock()

	anomaly, err := s.tracker.Submit(sample)
	if anomaly != nil {
		r.fileAnomaly(ctx, anomaly)
	}
	if err != nil {
		return err
	}

	tr := r.geofence.Evaluate(s.membership, sample)
	r.publishTransitions(ctx, touristID, sample, tr)

	if tr.Violation != nil {
		if err := r.raiseZoneAlert(ctx, touristID, sample, tr.Violation); err != nil {
			return err
		}
	}

	if r.shouldRecompute(s, sample, tr) {
		r.recomputeLocked(ctx, s, sample)
	}
	return nil
}

// RecomputeScore refreshes the session's safety score from its latest
// accepted sample. Used by the periodic loop and the score API.
func (r *SessionRegistry) RecomputeScore(ctx context.Context, touristID string) (*domain.SafetyScore, error) {
	s, ok := r.lookup(touristID)
	if !ok {
		return nil, fmt.Errorf("tourist %s: not tracked", touristID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sample, ok := s.tracker.Latest()
	if !ok {
		return nil, fmt.Errorf("tourist %s: no accepted samples yet", touristID)
	}
	r.recomputeLocked(ctx, s, sample)
	cp := *s.score
	return &cp, nil
}

// Score returns the last computed score without forcing a recompute.
func (r *SessionRegistry) Score(touristID string) (*domain.SafetyScore, bool) {
	s, ok := r.lookup(touristID)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.score == nil {
		return nil, false
	}
	cp := *s.score
	return &cp, true
}

// Latest returns the session's most recent accepted sample.
func (r *SessionRegistry) Latest(touristID string) (domain.LocationSample, bool) {
	s, ok := r.lookup(touristID)
	if !ok {
		return domain.LocationSample{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Latest()
}

// Zones returns the ids of zones the session is currently inside.
func (r *SessionRegistry) Zones(touristID string) []string {
	s, ok := r.lookup(touristID)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.membership.ZoneIDs()
}

// Stop tears the session down. Taking the session lock first lets an
// in-flight sample drain, so a final zone exit or violation is not lost.
func (r *SessionRegistry) Stop(touristID string) {
	r.mu.Lock()
	s, ok := r.sessions[touristID]
	if ok {
		delete(r.sessions, touristID)
	}
	r.mu.Unlock()
	if ok {
		s.mu.Lock()
		s.mu.Unlock()
	}
}

// Run drives the periodic score recompute until ctx is cancelled.
func (r *SessionRegistry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.ScoreInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.RLock()
			ids := make([]string, 0, len(r.sessions))
			for id := range r.sessions {
				ids = append(ids, id)
			}
			r.mu.RUnlock()
			for _, id := range ids {
				_, _ = r.RecomputeScore(ctx, id)
			}
			r.alerts.ExpireDue(ctx)
		}
	}
}

// shouldRecompute bounds recompute cost: membership change, first score, or
// displacement beyond the threshold, never every sample.
func (r *SessionRegistry) shouldRecompute(s *session, sample domain.LocationSample, tr domain.ZoneTransitions) bool {
	if len(tr.Entered) > 0 || len(tr.Exited) > 0 {
		return true
	}
	if s.lastScoreLoc == nil {
		return true
	}
	return haversine(s.lastScoreLoc.Lat, s.lastScoreLoc.Lon, sample.Lat, sample.Lon) > r.cfg.ScoreDistance
}

func (r *SessionRegistry) recomputeLocked(ctx context.Context, s *session, sample domain.LocationSample) {
	top := r.geofence.TopZone(s.membership)
	score := r.score.Recompute(ctx, sample, top)
	s.score = &score
	s.lastScoreLoc = &sample

	if r.pub != nil {
		ev := domain.NewEvent(domain.EventSafetyScoreUpdated, s.touristID, score, r.now())
		_ = r.pub.PublishEvent(ctx, ev)
	}
}

func (r *SessionRegistry) publishTransitions(ctx context.Context, touristID string, sample domain.LocationSample, tr domain.ZoneTransitions) {
	if r.pub == nil {
		return
	}
	for _, z := range tr.Entered {
		if !z.Hazardous() {
			continue
		}
		ev := domain.NewEvent(domain.EventZoneViolation, touristID, zonePayload(z, sample), r.now())
		_ = r.pub.PublishEvent(ctx, ev)
	}
	for _, z := range tr.Exited {
		if !z.Hazardous() {
			continue
		}
		ev := domain.NewEvent(domain.EventZoneClear, touristID, zonePayload(z, sample), r.now())
		_ = r.pub.PublishEvent(ctx, ev)
	}
}

func zonePayload(z *domain.GeofenceZone, sample domain.LocationSample) domain.ZoneEventPayload {
	return domain.ZoneEventPayload{
		ZoneID:   z.ID,
		ZoneName: z.Name,
		Kind:     z.Kind,
		Risk:     z.Risk,
		Location: sample,
	}
}

func (r *SessionRegistry) raiseZoneAlert(ctx context.Context, touristID string, sample domain.LocationSample, z *domain.GeofenceZone) error {
	subType := domain.SubTypeHighRiskZone
	if z.Kind == domain.ZoneRestricted {
		subType = domain.SubTypeRestrictedZone
	}
	severity := zoneSeverity(z)
	_, err := r.alerts.Create(ctx, CreateAlert{
		TouristID:      touristID,
		Type:           domain.AlertGeoFence,
		SubType:        subType,
		Title:          fmt.Sprintf("Entering %s", z.Name),
		Message:        fmt.Sprintf("You have entered %s. Please exercise caution.", z.Name),
		Severity:       severity,
		Location:       &sample,
		TTL:            r.cfg.ZoneAlertTTL,
		ActionRequired: severity == domain.SeverityDanger,
	})
	if err != nil {
		return fmt.Errorf("zone alert: %w", err)
	}
	return nil
}

func zoneSeverity(z *domain.GeofenceZone) domain.Severity {
	switch z.Priority() {
	case 4, 3:
		return domain.SeverityDanger
	case 2:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}

func (r *SessionRegistry) fileAnomaly(ctx context.Context, a *domain.AnomalyCandidate) {
	title := "Route Deviation Detected"
	msg := "Your reported position jumped implausibly far from the last fix."
	subType := domain.SubTypeRouteDeviation
	if a.Kind == domain.AnomalySuddenStop {
		title = "Sudden Stop Detected"
		msg = "No movement detected for an unusually long period."
		subType = domain.SubTypeSuddenStop
	}
	_, _ = r.alerts.Create(ctx, CreateAlert{
		TouristID: a.TouristID,
		Type:      domain.AlertAnomaly,
		SubType:   subType,
		Title:     title,
		Message:   msg,
		Severity:  domain.SeverityInfo,
		Location:  &a.Sample,
		TTL:       r.cfg.ZoneAlertTTL,
	})
}
