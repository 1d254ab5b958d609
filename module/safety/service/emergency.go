package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/database"
	"github.com/Satya8176/Toursit/module/safety/repository/dispatch"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/publisher"
)

// EmergencyConfig bounds the dispatch retry loop.
type EmergencyConfig struct {
	MaxDispatchAttempts uint64
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
}

func DefaultEmergencyConfig() EmergencyConfig {
	return EmergencyConfig{
		MaxDispatchAttempts: 3,
		InitialBackoff:      500 * time.Millisecond,
		MaxBackoff:          5 * time.Second,
	}
}

// EmergencyService drives the panic escalation state machine:
// idle → activating → active → deactivating → idle, with dispatch_failed as
// a caller-visible variant of activating and resolved reachable from active
// via an external signal. One open case per tourist.
type EmergencyService struct {
	mu    sync.Mutex
	cases map[string]*domain.EmergencyCase

	cfg        EmergencyConfig
	dispatcher dispatch.Dispatcher
	alerts     *AlertService
	incidents  database.IncidentRepository
	pub        publisher.EventPublisher

	now   func() time.Time
	newID func() string
}

func NewEmergencyService(d dispatch.Dispatcher, alerts *AlertService, incidents database.IncidentRepository, pub publisher.EventPublisher, cfg EmergencyConfig) *EmergencyService {
	if cfg.MaxDispatchAttempts == 0 {
		cfg = DefaultEmergencyConfig()
	}
	return &EmergencyService{
		cases:      make(map[string]*domain.EmergencyCase),
		cfg:        cfg,
		dispatcher: d,
		alerts:     alerts,
		incidents:  incidents,
		pub:        pub,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Activate opens an emergency case for the tourist and dispatches responders.
// Idempotent under concurrent double-activation: if a case is already open it
// is returned unchanged. On dispatch exhaustion the case is left open in
// dispatch_failed and ErrDispatchUnavailable is returned; it is never
// silently dropped.
func (s *EmergencyService) Activate(ctx context.Context, touristID string, loc domain.LocationSample) (*domain.EmergencyCase, error) {
	s.mu.Lock()
	if existing, ok := s.cases[touristID]; ok && existing.State.Open() {
		cp := *existing
		s.mu.Unlock()
		return &cp, nil
	}

	c := &domain.EmergencyCase{
		ID:        s.newID(),
		TouristID: touristID,
		State:     domain.EmergencyActivating,
		Location:  loc,
		CreatedAt: s.now(),
	}
	s.cases[touristID] = c
	cp := *c
	s.mu.Unlock()

	s.publishState(ctx, &cp, domain.EmergencyIdle)
	return s.dispatchCase(ctx, touristID, cp.ID)
}

// RetryDispatch re-runs dispatch for a case stuck in dispatch_failed.
func (s *EmergencyService) RetryDispatch(ctx context.Context, touristID string) (*domain.EmergencyCase, error) {
	s.mu.Lock()
	c, ok := s.cases[touristID]
	if !ok || !c.State.Open() {
		s.mu.Unlock()
		return nil, ErrNoOpenCase
	}
	if c.State != domain.EmergencyDispatchFailed {
		cp := *c
		s.mu.Unlock()
		return &cp, fmt.Errorf("%w: retry from %s", ErrStateTransition, c.State)
	}
	prev := c.State
	c.State = domain.EmergencyActivating
	cp := *c
	s.mu.Unlock()

	s.publishState(ctx, &cp, prev)
	return s.dispatchCase(ctx, touristID, cp.ID)
}

// dispatchCase runs the bounded-backoff dispatch loop for the identified
// case, then settles it into active or dispatch_failed. The case may have
// been replaced under concurrent deactivation, hence the id check.
func (s *EmergencyService) dispatchCase(ctx context.Context, touristID, caseID string) (*domain.EmergencyCase, error) {
	s.mu.Lock()
	c, ok := s.cases[touristID]
	if !ok || c.ID != caseID {
		s.mu.Unlock()
		return nil, ErrNoOpenCase
	}
	loc := c.Location
	s.mu.Unlock()

	var result *dispatch.Result
	attempts := 0
	op := func() error {
		attempts++
		r, err := s.dispatcher.ActivatePanic(ctx, touristID, loc)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.InitialBackoff
	bo.MaxInterval = s.cfg.MaxBackoff
	dispatchErr := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(bo, s.cfg.MaxDispatchAttempts-1), ctx))

	s.mu.Lock()
	c, ok = s.cases[touristID]
	if !ok || c.ID != caseID {
		s.mu.Unlock()
		return nil, ErrNoOpenCase
	}
	c.DispatchAttempts += attempts
	prev := c.State

	if dispatchErr != nil {
		c.State = domain.EmergencyDispatchFailed
		cp := *c
		s.mu.Unlock()
		s.publishState(ctx, &cp, prev)
		return &cp, fmt.Errorf("%w: %v", ErrDispatchUnavailable, dispatchErr)
	}

	c.State = domain.EmergencyActive
	c.DispatchRef = result.CaseRef
	c.Responders = result.Responders
	cp := *c
	s.mu.Unlock()

	s.publishState(ctx, &cp, prev)

	if _, err := s.alerts.Create(ctx, CreateAlert{
		TouristID:      touristID,
		Type:           domain.AlertIncident,
		SubType:        domain.SubTypeEmergency,
		Title:          "Emergency SOS Activated",
		Message:        "Emergency services have been notified. Help is on the way.",
		Severity:       domain.SeverityDanger,
		Location:       &loc,
		ActionRequired: true,
	}); err != nil {
		return &cp, fmt.Errorf("emergency alert: %w", err)
	}
	return &cp, nil
}

// Deactivate closes an active case, stamping resolvedAt. Only valid from
// active; any other state rejects with ErrStateTransition.
func (s *EmergencyService) Deactivate(ctx context.Context, touristID string) (*domain.EmergencyCase, error) {
	s.mu.Lock()
	c, ok := s.cases[touristID]
	if !ok || !c.State.Open() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: deactivate without active case", ErrStateTransition)
	}
	if c.State != domain.EmergencyActive {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: deactivate from %s", ErrStateTransition, c.State)
	}
	prev := c.State
	c.State = domain.EmergencyDeactivating
	ref := c.DispatchRef
	mid := *c
	s.mu.Unlock()

	s.publishState(ctx, &mid, prev)

	// Collaborator failure does not reopen the case; the tourist asked to
	// stand down.
	if ref != "" {
		_ = s.dispatcher.Deactivate(ctx, ref)
	}

	s.mu.Lock()
	now := s.now()
	c.ResolvedAt = &now
	prev = c.State
	c.State = domain.EmergencyResolved
	delete(s.cases, touristID)
	cp := *c
	s.mu.Unlock()

	s.publishState(ctx, &cp, prev)
	return &cp, nil
}

// Resolve closes an active case from the responder side.
func (s *EmergencyService) Resolve(ctx context.Context, touristID string) (*domain.EmergencyCase, error) {
	s.mu.Lock()
	c, ok := s.cases[touristID]
	if !ok || !c.State.Open() {
		s.mu.Unlock()
		return nil, ErrNoOpenCase
	}
	if c.State != domain.EmergencyActive {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: resolve from %s", ErrStateTransition, c.State)
	}
	now := s.now()
	c.ResolvedAt = &now
	prev := c.State
	c.State = domain.EmergencyResolved
	delete(s.cases, touristID)
	cp := *c
	s.mu.Unlock()

	s.publishState(ctx, &cp, prev)
	return &cp, nil
}

// Current returns the open case for a tourist, if any.
func (s *EmergencyService) Current(touristID string) (*domain.EmergencyCase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[touristID]
	if !ok || !c.State.Open() {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// ReportIncident forwards a tourist incident report to the dispatch
// collaborator and records it for the historical-incident density lookups.
func (s *EmergencyService) ReportIncident(ctx context.Context, report *domain.IncidentReport) error {
	if report.ReportedAt.IsZero() {
		report.ReportedAt = s.now()
	}
	if err := s.dispatcher.ReportIncident(ctx, report); err != nil {
		return fmt.Errorf("report incident: %w", err)
	}
	if s.incidents != nil {
		if err := s.incidents.Insert(ctx, report); err != nil {
			return fmt.Errorf("record incident: %w", err)
		}
	}
	return nil
}

func (s *EmergencyService) publishState(ctx context.Context, c *domain.EmergencyCase, prev domain.EmergencyState) {
	if s.pub == nil {
		return
	}
	cp := *c
	ev := domain.NewEvent(domain.EventEmergencyStateChanged, c.TouristID,
		domain.EmergencyEventPayload{Case: &cp, Previous: prev}, s.now())
	_ = s.pub.PublishEvent(ctx, ev)
}
