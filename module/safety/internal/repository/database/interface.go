package database

import (
	"context"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

type LocationRepository interface {
	Insert(ctx context.Context, loc *domain.TouristLocation) error
	GetLatest(ctx context.Context, touristID string) (*domain.TouristLocation, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TouristLocation, error)
}

// AlertRepository keeps the durable audit trail of cleared and expired
// alerts. The in-memory manager owns the live set; only terminal alerts
// reach the database.
type AlertRepository interface {
	Archive(ctx context.Context, alert *domain.Alert) error
}

// IncidentRepository records reported incidents and serves the density
// lookups for the safety score.
type IncidentRepository interface {
	Insert(ctx context.Context, report *domain.IncidentReport) error
	IncidentTimes(ctx context.Context, cell string, since time.Time) ([]time.Time, error)
}
