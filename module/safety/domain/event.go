package domain

import (
	"encoding/json"
	"time"
)

type EventKind string

const (
	EventZoneViolation         EventKind = "zone_violation"
	EventZoneClear             EventKind = "zone_clear"
	EventAlertCreated          EventKind = "alert_created"
	EventAlertStateChanged     EventKind = "alert_state_changed"
	EventSafetyScoreUpdated    EventKind = "safety_score_updated"
	EventEmergencyStateChanged EventKind = "emergency_state_changed"
)

// Event is the envelope published on the safety event feed. Payload is the
// event-specific body, already marshaled so the publisher stays agnostic.
type Event struct {
	Kind      EventKind       `json:"kind"`
	TouristID string          `json:"tourist_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent marshals payload into an envelope. Marshal errors are impossible
// for the domain types used as payloads, so they are swallowed into an
// empty body rather than propagated to every call site.
func NewEvent(kind EventKind, touristID string, payload any, at time.Time) *Event {
	body, err := json.Marshal(payload)
	if err != nil {
		body = nil
	}
	return &Event{
		Kind:      kind,
		TouristID: touristID,
		Payload:   body,
		Timestamp: at,
	}
}

// ZoneEventPayload is the body for zone_violation and zone_clear events.
type ZoneEventPayload struct {
	ZoneID   string         `json:"zone_id"`
	ZoneName string         `json:"zone_name"`
	Kind     ZoneKind       `json:"zone_type"`
	Risk     RiskLevel      `json:"risk_level,omitempty"`
	Location LocationSample `json:"location"`
}

// AlertEventPayload is the body for alert_created and alert_state_changed.
type AlertEventPayload struct {
	Alert    *Alert     `json:"alert"`
	Previous AlertState `json:"previous_state,omitempty"`
}

// EmergencyEventPayload is the body for emergency_state_changed.
type EmergencyEventPayload struct {
	Case     *EmergencyCase `json:"case"`
	Previous EmergencyState `json:"previous_state,omitempty"`
}
