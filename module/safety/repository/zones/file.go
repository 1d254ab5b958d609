package zones

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

// FileStore reads the geofence zone set from a JSON file. The engine treats
// the store as read-mostly and re-reads on the configured refresh interval.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Zones loads and decodes the zone set. An entirely empty or unreadable
// configuration is an error for the operator; degenerate individual zones
// are left for the geofence engine to exclude and report.
func (s *FileStore) Zones() ([]domain.GeofenceZone, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read zones %s: %w", s.path, err)
	}

	var zones []domain.GeofenceZone
	if err := json.Unmarshal(raw, &zones); err != nil {
		return nil, fmt.Errorf("parse zones %s: %w", s.path, err)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("zones %s: empty zone set", s.path)
	}
	return zones, nil
}
