package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/database"
)

var _ database.IncidentRepository = (*IncidentRepo)(nil)

type IncidentRepo struct {
	db *sql.DB
}

func NewIncidentRepo(db *sql.DB) *IncidentRepo {
	return &IncidentRepo{db: db}
}

func (r *IncidentRepo) Insert(ctx context.Context, report *domain.IncidentReport) error {
	cell := domain.GridCell(report.Location.Lat, report.Location.Lon)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incidents (tourist_id, type, severity, description, latitude, longitude, grid_cell, reported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.TouristID, report.Type, report.Severity, report.Description,
		report.Location.Lat, report.Location.Lon, cell, report.ReportedAt,
	)
	return err
}

func (r *IncidentRepo) IncidentTimes(ctx context.Context, cell string, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT reported_at FROM incidents WHERE grid_cell = $1 AND reported_at >= $2 ORDER BY reported_at ASC`,
		cell, since,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var times []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		times = append(times, ts)
	}
	return times, rows.Err()
}
