package postgres

import (
	"context"
	"database/sql"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/database"
)

var _ database.AlertRepository = (*AlertRepo)(nil)

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) Archive(ctx context.Context, alert *domain.Alert) error {
	var lat, lon sql.NullFloat64
	if alert.Location != nil {
		lat = sql.NullFloat64{Float64: alert.Location.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: alert.Location.Lon, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alert_audit (id, tourist_id, type, sub_type, severity, state, latitude, longitude, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		alert.ID, alert.TouristID, alert.Type, alert.SubType, alert.Severity, alert.State, lat, lon, alert.CreatedAt,
	)
	return err
}
