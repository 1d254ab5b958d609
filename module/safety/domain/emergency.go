package domain

import "time"

type EmergencyState string

const (
	EmergencyIdle       EmergencyState = "idle"
	EmergencyActivating EmergencyState = "activating"
	// EmergencyDispatchFailed means dispatch retries were exhausted. The case
	// stays open for manual retry; it is a caller-visible variant of
	// activating, never a silent drop.
	EmergencyDispatchFailed EmergencyState = "dispatch_failed"
	EmergencyActive         EmergencyState = "active"
	EmergencyDeactivating   EmergencyState = "deactivating"
	EmergencyResolved       EmergencyState = "resolved"
)

// Open reports whether the case still occupies the per-session slot.
func (s EmergencyState) Open() bool {
	return s == EmergencyActivating || s == EmergencyDispatchFailed ||
		s == EmergencyActive || s == EmergencyDeactivating
}

// Responder is one emergency service assigned by the dispatch collaborator.
type Responder struct {
	Type    string `json:"type"`
	ETA     string `json:"eta"`
	Contact string `json:"contact"`
}

// EmergencyCase is one panic activation. At most one open case exists per
// tourist at a time.
type EmergencyCase struct {
	ID               string         `json:"id"`
	TouristID        string         `json:"tourist_id"`
	State            EmergencyState `json:"state"`
	Location         LocationSample `json:"location"`
	CreatedAt        time.Time      `json:"created_at"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
	DispatchAttempts int            `json:"dispatch_attempts"`
	DispatchRef      string         `json:"dispatch_ref,omitempty"`
	Responders       []Responder    `json:"responders,omitempty"`
}

type IncidentType string

const (
	IncidentPanic           IncidentType = "panic"
	IncidentMedical         IncidentType = "medical"
	IncidentTheft           IncidentType = "theft"
	IncidentHarassment      IncidentType = "harassment"
	IncidentAccident        IncidentType = "accident"
	IncidentNaturalDisaster IncidentType = "natural_disaster"
)

type IncidentSeverity string

const (
	IncidentSeverityLow      IncidentSeverity = "low"
	IncidentSeverityMedium   IncidentSeverity = "medium"
	IncidentSeverityHigh     IncidentSeverity = "high"
	IncidentSeverityCritical IncidentSeverity = "critical"
)

// IncidentReport is a tourist-filed report forwarded to the dispatch
// collaborator and recorded for historical-incident density.
type IncidentReport struct {
	TouristID   string           `json:"tourist_id"`
	Type        IncidentType     `json:"type"`
	Severity    IncidentSeverity `json:"severity"`
	Description string           `json:"description"`
	Location    LocationSample   `json:"location"`
	ReportedAt  time.Time        `json:"reported_at"`
}
