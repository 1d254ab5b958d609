package service

import (
	"fmt"
	"math"
	"sync"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

// boundaryEpsilon is the tolerance for the on-edge test, in degrees.
const boundaryEpsilon = 1e-9

// DefaultExitDebounce is how many consecutive outside samples are required
// before a zone exit is recognized.
const DefaultExitDebounce = 2

// GeofenceService classifies locations against the configured zone set and
// computes per-session membership transitions with exit hysteresis.
// Degenerate zones (fewer than 3 vertices) are excluded from evaluation and
// reported through the config-error callback, never treated as a runtime
// failure.
type GeofenceService struct {
	mu           sync.RWMutex
	zones        []domain.GeofenceZone
	byID         map[string]*domain.GeofenceZone
	retired      map[string]domain.GeofenceZone
	exitDebounce int

	onConfigError func(zone domain.GeofenceZone, err error)
}

func NewGeofenceService(zones []domain.GeofenceZone, exitDebounce int, onConfigError func(domain.GeofenceZone, error)) *GeofenceService {
	if exitDebounce <= 0 {
		exitDebounce = DefaultExitDebounce
	}
	s := &GeofenceService{
		exitDebounce:  exitDebounce,
		onConfigError: onConfigError,
	}
	s.SetZones(zones)
	return s
}

// SetZones replaces the active zone set. Called at startup and whenever the
// configuration store refreshes.
func (s *GeofenceService) SetZones(zones []domain.GeofenceZone) {
	valid := make([]domain.GeofenceZone, 0, len(zones))
	for _, z := range zones {
		if len(z.Vertices) < 3 {
			if s.onConfigError != nil {
				s.onConfigError(z, fmt.Errorf("zone %s: polygon needs at least 3 vertices, got %d", z.ID, len(z.Vertices)))
			}
			continue
		}
		valid = append(valid, z)
	}
	byID := make(map[string]*domain.GeofenceZone, len(valid))
	for i := range valid {
		byID[valid[i].ID] = &valid[i]
	}

	// Remember zones dropped by this refresh so sessions still inside them
	// can be exited with the zone's metadata intact.
	retired := make(map[string]domain.GeofenceZone)
	s.mu.Lock()
	for id, z := range s.retired {
		if _, ok := byID[id]; !ok {
			retired[id] = z
		}
	}
	for i := range s.zones {
		old := s.zones[i]
		if _, ok := byID[old.ID]; !ok {
			retired[old.ID] = old
		}
	}
	s.zones = valid
	s.byID = byID
	s.retired = retired
	s.mu.Unlock()
}

// TopZone returns the highest-priority zone the session is currently a
// member of, or nil when outside all zones.
func (s *GeofenceService) TopZone(m *domain.ZoneMembership) *domain.GeofenceZone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var top *domain.GeofenceZone
	for _, id := range m.ZoneIDs() {
		z, ok := s.byID[id]
		if !ok {
			continue
		}
		if top == nil || z.Priority() > top.Priority() {
			top = z
		}
	}
	return top
}

// Zones returns the active, valid zone set.
func (s *GeofenceService) Zones() []domain.GeofenceZone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GeofenceZone, len(s.zones))
	copy(out, s.zones)
	return out
}

// Evaluate classifies one accepted sample against all active zones and
// mutates the session's membership accordingly. Entering is recognized on the
// first inside sample; exiting only after exitDebounce consecutive outside
// samples, so boundary-adjacent GPS noise does not flap alerts.
func (s *GeofenceService) Evaluate(m *domain.ZoneMembership, sample domain.LocationSample) domain.ZoneTransitions {
	s.mu.RLock()
	zones := s.zones
	byID := s.byID
	retired := s.retired
	s.mu.RUnlock()

	var tr domain.ZoneTransitions
	for i := range zones {
		z := &zones[i]
		if !z.Active {
			continue
		}
		inside := pointInPolygon(sample.Lat, sample.Lon, z.Vertices)

		switch {
		case inside && !m.Contains(z.ID):
			m.Enter(z.ID)
			tr.Entered = append(tr.Entered, z)
		case inside:
			m.ClearPending(z.ID)
		case m.Contains(z.ID):
			if m.MarkOutside(z.ID) >= s.exitDebounce {
				m.Exit(z.ID)
				tr.Exited = append(tr.Exited, z)
			}
		}
	}

	// Memberships can reference zones dropped by a config refresh. Exit them
	// immediately; debounce exists for GPS noise, not for deleted zones.
	for _, id := range m.ZoneIDs() {
		if _, ok := byID[id]; ok {
			continue
		}
		m.Exit(id)
		gone := domain.GeofenceZone{ID: id}
		if z, ok := retired[id]; ok {
			gone = z
		}
		cp := gone
		tr.Exited = append(tr.Exited, &cp)
	}

	for _, z := range tr.Entered {
		if !z.Hazardous() {
			continue
		}
		if tr.Violation == nil || z.Priority() > tr.Violation.Priority() {
			tr.Violation = z
		}
	}
	return tr
}

// pointInPolygon is the crossing-number test: cast a ray east from the point
// and count edge crossings; odd means inside. Horizontal edges (both
// endpoints at the same latitude) contribute no crossing. Points exactly on
// a vertex or edge are inside.
func pointInPolygon(lat, lon float64, vs []domain.Vertex) bool {
	for i := range vs {
		j := (i + 1) % len(vs)
		if onSegment(lat, lon, vs[i], vs[j]) {
			return true
		}
	}

	inside := false
	j := len(vs) - 1
	for i := 0; i < len(vs); i, j = i+1, i {
		vi, vj := vs[i], vs[j]
		if (vi.Lat > lat) == (vj.Lat > lat) {
			continue
		}
		cross := (vj.Lon-vi.Lon)*(lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lon
		if lon < cross {
			inside = !inside
		}
	}
	return inside
}

// onSegment reports whether the point lies on the segment a-b, within
// floating-point tolerance.
func onSegment(lat, lon float64, a, b domain.Vertex) bool {
	minLat, maxLat := math.Min(a.Lat, b.Lat), math.Max(a.Lat, b.Lat)
	minLon, maxLon := math.Min(a.Lon, b.Lon), math.Max(a.Lon, b.Lon)
	if lat < minLat-boundaryEpsilon || lat > maxLat+boundaryEpsilon ||
		lon < minLon-boundaryEpsilon || lon > maxLon+boundaryEpsilon {
		return false
	}
	cross := (b.Lat-a.Lat)*(lon-a.Lon) - (b.Lon-a.Lon)*(lat-a.Lat)
	return math.Abs(cross) <= boundaryEpsilon
}
