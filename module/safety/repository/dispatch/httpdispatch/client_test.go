package httpdispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

func TestActivatePanic_Success(t *testing.T) {
	var gotPath string
	var gotReq panicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(panicResponse{
			EmergencyID: "EMG-001",
			Status:      "dispatched",
			Responders: []domain.Responder{
				{Type: "Police", ETA: "5 minutes", Contact: "100"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	loc := domain.LocationSample{Lat: 15.2963, Lon: 74.1245, Timestamp: time.Unix(1748772000, 0)}
	result, err := c.ActivatePanic(context.Background(), "tourist-1", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/panic" {
		t.Errorf("expected /panic, got %s", gotPath)
	}
	if gotReq.TouristID != "tourist-1" || gotReq.Latitude != 15.2963 {
		t.Errorf("unexpected request %+v", gotReq)
	}
	if result.CaseRef != "EMG-001" {
		t.Errorf("expected EMG-001, got %s", result.CaseRef)
	}
	if len(result.Responders) != 1 || result.Responders[0].Type != "Police" {
		t.Errorf("unexpected responders %+v", result.Responders)
	}
}

func TestActivatePanic_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ActivatePanic(context.Background(), "tourist-1", domain.LocationSample{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestActivatePanic_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.ActivatePanic(ctx, "tourist-1", domain.LocationSample{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDeactivate_Success(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deactivate" {
			t.Errorf("expected /deactivate, got %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.Deactivate(context.Background(), "EMG-001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["emergency_id"] != "EMG-001" {
		t.Errorf("unexpected body %v", gotBody)
	}
}

func TestReportIncident_Success(t *testing.T) {
	var got domain.IncidentReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/incident" {
			t.Errorf("expected /incident, got %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.ReportIncident(context.Background(), &domain.IncidentReport{
		TouristID: "tourist-1",
		Type:      domain.IncidentTheft,
		Severity:  domain.IncidentSeverityMedium,
		Location:  domain.LocationSample{Lat: 15.29, Lon: 74.12},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TouristID != "tourist-1" || got.Type != domain.IncidentTheft {
		t.Errorf("unexpected report %+v", got)
	}
}
