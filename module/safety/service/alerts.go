package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/database"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/publisher"
)

const (
	// DefaultDedupCooldown suppresses identical (subject, type, subtype)
	// triggers within this window.
	DefaultDedupCooldown = 5 * time.Minute

	// DefaultAuditCapacity bounds the retained log of terminal alerts;
	// oldest entries are evicted first.
	DefaultAuditCapacity = 200
)

// CreateAlert carries the inputs for a new alert.
type CreateAlert struct {
	TouristID      string
	Type           domain.AlertType
	SubType        domain.AlertSubType
	Title          string
	Message        string
	Severity       domain.Severity
	Location       *domain.LocationSample
	TTL            time.Duration
	ActionRequired bool
}

type dedupKey struct {
	touristID string
	typ       domain.AlertType
	subType   domain.AlertSubType
}

// AlertService owns alert creation, deduplication, state transitions and
// retention. Safe for concurrent use.
type AlertService struct {
	mu       sync.Mutex
	active   map[string]*domain.Alert
	audit    []*domain.Alert
	cooldown time.Duration
	auditCap int

	repo database.AlertRepository
	pub  publisher.EventPublisher

	now   func() time.Time
	newID func() string
}

func NewAlertService(repo database.AlertRepository, pub publisher.EventPublisher) *AlertService {
	return &AlertService{
		active:   make(map[string]*domain.Alert),
		cooldown: DefaultDedupCooldown,
		auditCap: DefaultAuditCapacity,
		repo:     repo,
		pub:      pub,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Create inserts a new unread alert, unless a non-terminal alert with the
// same (subject, type, subtype) was created within the dedup cooldown. A
// suppressed duplicate returns the existing alert; if the new severity is
// strictly higher the existing alert is escalated in place and no new id is
// issued.
func (s *AlertService) Create(ctx context.Context, req CreateAlert) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(ctx, now)

	key := dedupKey{req.TouristID, req.Type, req.SubType}
	if existing := s.findDuplicateLocked(key, now); existing != nil {
		if req.Severity.Rank() > existing.Severity.Rank() {
			existing.Severity = req.Severity
			if err := s.publish(ctx, domain.EventAlertStateChanged, existing, existing.State); err != nil {
				return existing, err
			}
		}
		return existing, nil
	}

	alert := &domain.Alert{
		ID:             s.newID(),
		TouristID:      req.TouristID,
		Type:           req.Type,
		SubType:        req.SubType,
		Title:          req.Title,
		Message:        req.Message,
		Severity:       req.Severity,
		Location:       req.Location,
		State:          domain.AlertUnread,
		CreatedAt:      now,
		ActionRequired: req.ActionRequired,
	}
	if req.TTL > 0 {
		alert.ExpiresAt = now.Add(req.TTL)
	}
	s.active[alert.ID] = alert

	if err := s.publish(ctx, domain.EventAlertCreated, alert, ""); err != nil {
		return alert, err
	}
	return alert, nil
}

// MarkAsRead moves created/unread to read. Already read or acknowledged is
// an idempotent no-op; terminal states reject.
func (s *AlertService) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(ctx, s.now())

	alert, ok := s.active[id]
	if !ok {
		return s.missingLocked(id, "read")
	}
	if alert.IsRead() {
		return nil
	}
	prev := alert.State
	alert.State = domain.AlertRead
	return s.publish(ctx, domain.EventAlertStateChanged, alert, prev)
}

// MarkAsAcknowledged moves unread/read to acknowledged; acknowledging always
// implies read. Terminal states reject.
func (s *AlertService) MarkAsAcknowledged(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(ctx, s.now())

	alert, ok := s.active[id]
	if !ok {
		return s.missingLocked(id, "acknowledge")
	}
	if alert.State == domain.AlertAcknowledged {
		return nil
	}
	prev := alert.State
	alert.State = domain.AlertAcknowledged
	return s.publish(ctx, domain.EventAlertStateChanged, alert, prev)
}

// Clear moves any non-terminal alert to cleared and into the audit log.
func (s *AlertService) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(ctx, s.now())

	alert, ok := s.active[id]
	if !ok {
		return s.missingLocked(id, "clear")
	}
	prev := alert.State
	alert.State = domain.AlertCleared
	s.retireLocked(ctx, alert)
	return s.publish(ctx, domain.EventAlertStateChanged, alert, prev)
}

// ExpireDue sweeps alerts whose expiry has elapsed. Also invoked implicitly
// by every mutation, so callers only need the periodic sweep for feeds that
// would otherwise be idle.
func (s *AlertService) ExpireDue(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(ctx, s.now())
}

// Active returns copies of the non-terminal alerts for one tourist, in no
// particular order.
func (s *AlertService) Active(ctx context.Context, touristID string) []*domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(ctx, s.now())

	var out []*domain.Alert
	for _, a := range s.active {
		if a.TouristID == touristID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

// UnreadCount is derived from the live alert set on every call, so it can
// never drift from the alerts themselves.
func (s *AlertService) UnreadCount(ctx context.Context, touristID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(ctx, s.now())

	n := 0
	for _, a := range s.active {
		if a.TouristID == touristID && a.Unread() {
			n++
		}
	}
	return n
}

// Audit returns a snapshot of the retained terminal alerts, oldest first.
func (s *AlertService) Audit() []*domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Alert, len(s.audit))
	for i, a := range s.audit {
		cp := *a
		out[i] = &cp
	}
	return out
}

// missingLocked distinguishes an unknown alert id from one that reached a
// terminal state and was retired: transitions on retired alerts are invalid
// transitions, not missing alerts.
func (s *AlertService) missingLocked(id, verb string) error {
	for _, a := range s.audit {
		if a.ID == id {
			return fmt.Errorf("%w: cannot %s %s alert", ErrStateTransition, verb, a.State)
		}
	}
	return ErrAlertNotFound
}

func (s *AlertService) findDuplicateLocked(key dedupKey, now time.Time) *domain.Alert {
	for _, a := range s.active {
		if a.TouristID == key.touristID && a.Type == key.typ && a.SubType == key.subType &&
			now.Sub(a.CreatedAt) < s.cooldown {
			return a
		}
	}
	return nil
}

func (s *AlertService) expireLocked(ctx context.Context, now time.Time) {
	for _, a := range s.active {
		if !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt) {
			prev := a.State
			a.State = domain.AlertExpired
			s.retireLocked(ctx, a)
			_ = s.publish(ctx, domain.EventAlertStateChanged, a, prev)
		}
	}
}

// retireLocked moves a terminal alert out of the active set into the bounded
// audit log and the durable archive.
func (s *AlertService) retireLocked(ctx context.Context, alert *domain.Alert) {
	delete(s.active, alert.ID)
	s.audit = append(s.audit, alert)
	if len(s.audit) > s.auditCap {
		s.audit = s.audit[len(s.audit)-s.auditCap:]
	}
	if s.repo != nil {
		if err := s.repo.Archive(ctx, alert); err != nil {
			log.Printf("archive alert %s: %v", alert.ID, err)
		}
	}
}

func (s *AlertService) publish(ctx context.Context, kind domain.EventKind, alert *domain.Alert, prev domain.AlertState) error {
	if s.pub == nil {
		return nil
	}
	cp := *alert
	ev := domain.NewEvent(kind, alert.TouristID, domain.AlertEventPayload{Alert: &cp, Previous: prev}, s.now())
	if err := s.pub.PublishEvent(ctx, ev); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}
