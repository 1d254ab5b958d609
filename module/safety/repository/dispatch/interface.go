package dispatch

import (
	"context"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

// Result is the dispatch service's answer to a panic activation.
type Result struct {
	CaseRef    string             `json:"case_ref"`
	Responders []domain.Responder `json:"responders"`
}

// Dispatcher is the external emergency dispatch collaborator. It is fallible
// and possibly slow; the escalation controller owns retry and backoff.
type Dispatcher interface {
	ActivatePanic(ctx context.Context, touristID string, loc domain.LocationSample) (*Result, error)
	Deactivate(ctx context.Context, caseRef string) error
	ReportIncident(ctx context.Context, report *domain.IncidentReport) error
}
