package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

type mockLocationRepo struct {
	insertFn     func(ctx context.Context, loc *domain.TouristLocation) error
	getLatestFn  func(ctx context.Context, touristID string) (*domain.TouristLocation, error)
	getHistoryFn func(ctx context.Context, query *domain.HistoryQuery) ([]domain.TouristLocation, error)
}

func (m *mockLocationRepo) Insert(ctx context.Context, loc *domain.TouristLocation) error {
	return m.insertFn(ctx, loc)
}

func (m *mockLocationRepo) GetLatest(ctx context.Context, touristID string) (*domain.TouristLocation, error) {
	return m.getLatestFn(ctx, touristID)
}

func (m *mockLocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TouristLocation, error) {
	return m.getHistoryFn(ctx, query)
}

func TestSaveLocation_Success(t *testing.T) {
	var inserted *domain.TouristLocation
	repo := &mockLocationRepo{
		insertFn: func(_ context.Context, loc *domain.TouristLocation) error {
			inserted = loc
			return nil
		},
	}

	svc := NewLocationService(repo)
	tl := &domain.TouristLocation{
		TouristID: "tourist-1",
		Sample: domain.LocationSample{
			Lat:       15.2963,
			Lon:       74.1245,
			Accuracy:  12.5,
			Timestamp: time.Unix(1748772000, 0),
		},
	}

	if err := svc.SaveLocation(context.Background(), tl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted == nil {
		t.Fatal("expected Insert to be called")
	}
	if inserted.TouristID != "tourist-1" {
		t.Errorf("expected tourist-1, got %s", inserted.TouristID)
	}
}

func TestSaveLocation_RepoError(t *testing.T) {
	repo := &mockLocationRepo{
		insertFn: func(_ context.Context, _ *domain.TouristLocation) error {
			return errors.New("db error")
		},
	}

	svc := NewLocationService(repo)
	err := svc.SaveLocation(context.Background(), &domain.TouristLocation{TouristID: "tourist-1"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetLatest_PassThrough(t *testing.T) {
	ts := time.Unix(1748772000, 0)
	repo := &mockLocationRepo{
		getLatestFn: func(_ context.Context, touristID string) (*domain.TouristLocation, error) {
			if touristID != "tourist-1" {
				t.Fatalf("unexpected touristID: %s", touristID)
			}
			return &domain.TouristLocation{
				TouristID: "tourist-1",
				Sample:    domain.LocationSample{Lat: 15.29, Lon: 74.12, Timestamp: ts},
			}, nil
		},
	}

	svc := NewLocationService(repo)
	tl, err := svc.GetLatest(context.Background(), "tourist-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tl.Sample.Lat != 15.29 {
		t.Errorf("expected 15.29, got %f", tl.Sample.Lat)
	}
}

func TestGetHistory_PassThrough(t *testing.T) {
	repo := &mockLocationRepo{
		getHistoryFn: func(_ context.Context, query *domain.HistoryQuery) ([]domain.TouristLocation, error) {
			return []domain.TouristLocation{
				{TouristID: query.TouristID},
				{TouristID: query.TouristID},
			}, nil
		},
	}

	svc := NewLocationService(repo)
	results, err := svc.GetHistory(context.Background(), &domain.HistoryQuery{
		TouristID: "tourist-1",
		Start:     time.Unix(1748770000, 0),
		End:       time.Unix(1748779999, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}
