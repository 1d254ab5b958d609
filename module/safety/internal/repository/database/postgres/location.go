package postgres

import (
	"context"
	"database/sql"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Insert(ctx context.Context, loc *domain.TouristLocation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tourist_locations (tourist_id, latitude, longitude, accuracy, timestamp) VALUES ($1, $2, $3, $4, $5)`,
		loc.TouristID, loc.Sample.Lat, loc.Sample.Lon, loc.Sample.Accuracy, loc.Sample.Timestamp,
	)
	return err
}

func (r *LocationRepo) GetLatest(ctx context.Context, touristID string) (*domain.TouristLocation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT tourist_id, latitude, longitude, accuracy, timestamp FROM tourist_locations WHERE tourist_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		touristID,
	)

	var tl domain.TouristLocation
	if err := row.Scan(&tl.TouristID, &tl.Sample.Lat, &tl.Sample.Lon, &tl.Sample.Accuracy, &tl.Sample.Timestamp); err != nil {
		return nil, err
	}
	return &tl, nil
}

func (r *LocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TouristLocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tourist_id, latitude, longitude, accuracy, timestamp FROM tourist_locations WHERE tourist_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.TouristID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.TouristLocation
	for rows.Next() {
		var tl domain.TouristLocation
		if err := rows.Scan(&tl.TouristID, &tl.Sample.Lat, &tl.Sample.Lon, &tl.Sample.Accuracy, &tl.Sample.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, tl)
	}
	return results, rows.Err()
}
