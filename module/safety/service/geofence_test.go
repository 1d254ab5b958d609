package service

import (
	"testing"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

func squareZone(id string, kind domain.ZoneKind, risk domain.RiskLevel) domain.GeofenceZone {
	return domain.GeofenceZone{
		ID:     id,
		Name:   id,
		Kind:   kind,
		Risk:   risk,
		Active: true,
		Vertices: []domain.Vertex{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 10},
			{Lat: 10, Lon: 10},
			{Lat: 10, Lon: 0},
		},
	}
}

func geoSample(lat, lon float64) domain.LocationSample {
	return domain.LocationSample{Lat: lat, Lon: lon, Accuracy: 10, Timestamp: time.Now()}
}

func TestPointInPolygon(t *testing.T) {
	square := squareZone("z1", domain.ZoneRisk, domain.RiskHigh).Vertices

	cases := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"center", 5, 5, true},
		{"outside", 15, 15, false},
		{"outside west", 5, -1, false},
		{"on edge", 0, 5, true},
		{"on vertex", 10, 10, true},
		{"just inside", 9.999999, 9.999999, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pointInPolygon(tc.lat, tc.lon, square); got != tc.want {
				t.Errorf("pointInPolygon(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// U-shaped polygon; the notch between the prongs is outside.
	u := []domain.Vertex{
		{Lat: 0, Lon: 0},
		{Lat: 10, Lon: 0},
		{Lat: 10, Lon: 3},
		{Lat: 3, Lon: 3},
		{Lat: 3, Lon: 7},
		{Lat: 10, Lon: 7},
		{Lat: 10, Lon: 10},
		{Lat: 0, Lon: 10},
	}

	if !pointInPolygon(1, 5, u) {
		t.Error("point in the base of the U should be inside")
	}
	if pointInPolygon(8, 5, u) {
		t.Error("point in the notch should be outside")
	}
	if !pointInPolygon(8, 1, u) {
		t.Error("point in the left prong should be inside")
	}
}

func TestEvaluateEnterOnFirstInsideSample(t *testing.T) {
	svc := NewGeofenceService([]domain.GeofenceZone{squareZone("z1", domain.ZoneRisk, domain.RiskHigh)}, 2, nil)
	m := domain.NewZoneMembership()

	tr := svc.Evaluate(m, geoSample(5, 5))
	if len(tr.Entered) != 1 || tr.Entered[0].ID != "z1" {
		t.Fatalf("expected single entry into z1, got %+v", tr.Entered)
	}
	if tr.Violation == nil || tr.Violation.ID != "z1" {
		t.Fatalf("expected violation for hazardous zone, got %+v", tr.Violation)
	}

	// A second inside sample does not re-enter.
	tr = svc.Evaluate(m, geoSample(6, 6))
	if len(tr.Entered) != 0 || tr.Violation != nil {
		t.Errorf("repeated inside sample must not re-enter, got %+v", tr)
	}
}

func TestEvaluateExitRequiresDebounce(t *testing.T) {
	svc := NewGeofenceService([]domain.GeofenceZone{squareZone("z1", domain.ZoneRisk, domain.RiskHigh)}, 2, nil)
	m := domain.NewZoneMembership()

	svc.Evaluate(m, geoSample(5, 5))

	// First outside sample: still a member.
	tr := svc.Evaluate(m, geoSample(15, 15))
	if len(tr.Exited) != 0 {
		t.Fatal("single outside sample must not exit")
	}
	if !m.Contains("z1") {
		t.Fatal("membership must persist through the first outside sample")
	}

	// Second consecutive outside sample exits.
	tr = svc.Evaluate(m, geoSample(15, 15))
	if len(tr.Exited) != 1 || tr.Exited[0].ID != "z1" {
		t.Fatalf("expected exit after debounce, got %+v", tr.Exited)
	}
	if m.Contains("z1") {
		t.Error("membership must be cleared after exit")
	}
}

func TestEvaluateInsideSampleResetsPendingExit(t *testing.T) {
	svc := NewGeofenceService([]domain.GeofenceZone{squareZone("z1", domain.ZoneRisk, domain.RiskHigh)}, 2, nil)
	m := domain.NewZoneMembership()

	svc.Evaluate(m, geoSample(5, 5))
	svc.Evaluate(m, geoSample(15, 15)) // one outside
	svc.Evaluate(m, geoSample(5, 5))   // back inside resets the counter

	tr := svc.Evaluate(m, geoSample(15, 15))
	if len(tr.Exited) != 0 {
		t.Error("pending exit counter must reset on an inside sample")
	}
	if !m.Contains("z1") {
		t.Error("still a member after a single post-reset outside sample")
	}
}

func TestEvaluateOverlappingZonesViolationPriority(t *testing.T) {
	restricted := squareZone("restricted", domain.ZoneRestricted, "")
	risk := squareZone("risk", domain.ZoneRisk, domain.RiskMedium)
	safe := squareZone("safe", domain.ZoneSafe, "")

	svc := NewGeofenceService([]domain.GeofenceZone{risk, safe, restricted}, 2, nil)
	m := domain.NewZoneMembership()

	tr := svc.Evaluate(m, geoSample(5, 5))
	if len(tr.Entered) != 3 {
		t.Fatalf("expected entry into all three zones, got %d", len(tr.Entered))
	}
	if tr.Violation == nil || tr.Violation.ID != "restricted" {
		t.Fatalf("violation must pick the highest-priority hazardous zone, got %+v", tr.Violation)
	}

	if top := svc.TopZone(m); top == nil || top.ID != "restricted" {
		t.Errorf("expected restricted as top zone, got %+v", top)
	}
}

func TestEvaluateSafeZoneNeverViolates(t *testing.T) {
	svc := NewGeofenceService([]domain.GeofenceZone{squareZone("safe", domain.ZoneSafe, "")}, 2, nil)
	m := domain.NewZoneMembership()

	tr := svc.Evaluate(m, geoSample(5, 5))
	if len(tr.Entered) != 1 {
		t.Fatalf("expected entry into safe zone, got %+v", tr.Entered)
	}
	if tr.Violation != nil {
		t.Errorf("safe zone entry must not be a violation, got %+v", tr.Violation)
	}
}

func TestEvaluateSkipsInactiveZones(t *testing.T) {
	z := squareZone("z1", domain.ZoneRisk, domain.RiskHigh)
	z.Active = false
	svc := NewGeofenceService([]domain.GeofenceZone{z}, 2, nil)
	m := domain.NewZoneMembership()

	tr := svc.Evaluate(m, geoSample(5, 5))
	if len(tr.Entered) != 0 {
		t.Errorf("inactive zone must not produce transitions, got %+v", tr.Entered)
	}
}

func TestEvaluateExitsZonesRemovedByRefresh(t *testing.T) {
	z1 := squareZone("z1", domain.ZoneRisk, domain.RiskHigh)
	svc := NewGeofenceService([]domain.GeofenceZone{z1}, 2, nil)
	m := domain.NewZoneMembership()

	svc.Evaluate(m, geoSample(5, 5))
	if !m.Contains("z1") {
		t.Fatal("expected membership in z1")
	}

	// A refresh drops z1 while the session is still inside its old footprint.
	svc.SetZones([]domain.GeofenceZone{squareZone("z2", domain.ZoneSafe, "")})

	tr := svc.Evaluate(m, geoSample(5, 5))
	if len(tr.Exited) != 1 || tr.Exited[0].ID != "z1" {
		t.Fatalf("removed zone must be exited without debounce, got %+v", tr.Exited)
	}
	if tr.Exited[0].Kind != domain.ZoneRisk {
		t.Errorf("exit must carry the retired zone's metadata, got kind %q", tr.Exited[0].Kind)
	}
	if m.Contains("z1") {
		t.Error("membership must not reference a removed zone")
	}

	// Later samples no longer report the retired zone.
	tr = svc.Evaluate(m, geoSample(5, 5))
	for _, z := range tr.Exited {
		if z.ID == "z1" {
			t.Error("retired zone exited twice")
		}
	}
}

func TestSetZonesReportsDegeneratePolygons(t *testing.T) {
	degenerate := domain.GeofenceZone{
		ID:     "broken",
		Kind:   domain.ZoneRisk,
		Active: true,
		Vertices: []domain.Vertex{
			{Lat: 0, Lon: 0},
			{Lat: 1, Lon: 1},
		},
	}

	var reported []string
	svc := NewGeofenceService(
		[]domain.GeofenceZone{degenerate, squareZone("ok", domain.ZoneSafe, "")},
		2,
		func(z domain.GeofenceZone, err error) { reported = append(reported, z.ID) },
	)

	if len(reported) != 1 || reported[0] != "broken" {
		t.Fatalf("expected degenerate zone reported, got %v", reported)
	}
	if got := len(svc.Zones()); got != 1 {
		t.Errorf("degenerate zone must be excluded, active zones %d", got)
	}
}
