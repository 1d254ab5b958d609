package service

import (
	"context"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/database"
)

// LocationService persists accepted locations and serves history queries.
// Persistence is deliberately outside the tracker, which is storage-free.
type LocationService struct {
	repo database.LocationRepository
}

func NewLocationService(repo database.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

func (s *LocationService) SaveLocation(ctx context.Context, loc *domain.TouristLocation) error {
	return s.repo.Insert(ctx, loc)
}

func (s *LocationService) GetLatest(ctx context.Context, touristID string) (*domain.TouristLocation, error) {
	return s.repo.GetLatest(ctx, touristID)
}

func (s *LocationService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TouristLocation, error) {
	return s.repo.GetHistory(ctx, query)
}
