package domain

import "time"

type AlertType string

const (
	AlertGeoFence AlertType = "geo_fence"
	AlertAnomaly  AlertType = "anomaly"
	AlertWeather  AlertType = "weather"
	AlertIncident AlertType = "incident"
	AlertSystem   AlertType = "system"
)

type AlertSubType string

const (
	SubTypeInactive       AlertSubType = "inactive"
	SubTypeRouteDeviation AlertSubType = "route_deviation"
	SubTypeSuddenStop     AlertSubType = "sudden_stop"
	SubTypeHighRiskZone   AlertSubType = "high_risk_zone"
	SubTypeRestrictedZone AlertSubType = "restricted_zone"
	SubTypeEmergency      AlertSubType = "emergency"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Rank orders severities for escalation comparisons.
func (s Severity) Rank() int {
	switch s {
	case SeverityDanger:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

type AlertState string

const (
	// AlertCreated is the transient pre-delivery state. Alerts raised by the
	// engine go straight to unread; created only appears for alerts staged by
	// external collaborators before delivery.
	AlertCreated      AlertState = "created"
	AlertUnread       AlertState = "unread"
	AlertRead         AlertState = "read"
	AlertAcknowledged AlertState = "acknowledged"
	AlertCleared      AlertState = "cleared"
	AlertExpired      AlertState = "expired"
)

// Terminal reports whether no further transitions are allowed.
func (s AlertState) Terminal() bool {
	return s == AlertCleared || s == AlertExpired
}

type Alert struct {
	ID             string          `json:"id"`
	TouristID      string          `json:"tourist_id"`
	Type           AlertType       `json:"type"`
	SubType        AlertSubType    `json:"sub_type"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Severity       Severity        `json:"severity"`
	Location       *LocationSample `json:"location,omitempty"`
	State          AlertState      `json:"state"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at,omitempty"`
	ActionRequired bool            `json:"action_required"`
}

// IsRead and IsAcknowledged are derived from State so the
// acknowledged-implies-read invariant holds by construction.
func (a *Alert) IsRead() bool {
	return a.State == AlertRead || a.State == AlertAcknowledged
}

func (a *Alert) IsAcknowledged() bool {
	return a.State == AlertAcknowledged
}

// Unread counts toward the unread badge.
func (a *Alert) Unread() bool {
	return a.State == AlertCreated || a.State == AlertUnread
}
