package domain

type ZoneKind string

const (
	ZoneSafe       ZoneKind = "safe_zone"
	ZoneRisk       ZoneKind = "risk_zone"
	ZoneRestricted ZoneKind = "restricted_zone"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type Vertex struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// GeofenceZone is a polygonal region with a risk classification. Zones are
// supplied by the configuration store and are read-only to the engine.
// RiskLevel is meaningful for risk zones only.
type GeofenceZone struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Kind     ZoneKind  `json:"type"`
	Risk     RiskLevel `json:"risk_level"`
	Vertices []Vertex  `json:"coordinates"`
	Active   bool      `json:"is_active"`
}

// Priority orders overlapping zones for alert purposes:
// restricted > risk(high) > risk(medium) > risk(low) > safe.
func (z *GeofenceZone) Priority() int {
	switch z.Kind {
	case ZoneRestricted:
		return 4
	case ZoneRisk:
		switch z.Risk {
		case RiskHigh:
			return 3
		case RiskMedium:
			return 2
		default:
			return 1
		}
	default:
		return 0
	}
}

// Hazardous reports whether entering the zone should raise a violation.
func (z *GeofenceZone) Hazardous() bool {
	return z.Kind == ZoneRisk || z.Kind == ZoneRestricted
}

// ZoneMembership is the per-session view of which zones the tourist is
// currently considered inside, after exit hysteresis. pendingExit counts
// consecutive outside samples per still-member zone.
type ZoneMembership struct {
	inside      map[string]bool
	pendingExit map[string]int
}

func NewZoneMembership() *ZoneMembership {
	return &ZoneMembership{
		inside:      make(map[string]bool),
		pendingExit: make(map[string]int),
	}
}

func (m *ZoneMembership) Contains(zoneID string) bool { return m.inside[zoneID] }

func (m *ZoneMembership) Enter(zoneID string) {
	m.inside[zoneID] = true
	delete(m.pendingExit, zoneID)
}

func (m *ZoneMembership) Exit(zoneID string) {
	delete(m.inside, zoneID)
	delete(m.pendingExit, zoneID)
}

// MarkOutside records one outside observation for a member zone and returns
// the consecutive outside count.
func (m *ZoneMembership) MarkOutside(zoneID string) int {
	m.pendingExit[zoneID]++
	return m.pendingExit[zoneID]
}

func (m *ZoneMembership) ClearPending(zoneID string) {
	delete(m.pendingExit, zoneID)
}

func (m *ZoneMembership) ZoneIDs() []string {
	ids := make([]string, 0, len(m.inside))
	for id := range m.inside {
		ids = append(ids, id)
	}
	return ids
}

// ZoneTransitions is the result of evaluating one accepted sample.
// Violation is the highest-priority newly entered hazardous zone, if any;
// only that zone drives alert generation.
type ZoneTransitions struct {
	Entered   []*GeofenceZone
	Exited    []*GeofenceZone
	Violation *GeofenceZone
}
