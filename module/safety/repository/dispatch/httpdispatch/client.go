package httpdispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/repository/dispatch"
)

var _ dispatch.Dispatcher = (*Client)(nil)

// Client talks to the emergency dispatch service over HTTP. Timeouts come
// from the caller's context plus the underlying client's own limit; retry
// policy belongs to the escalation controller, not here.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type panicRequest struct {
	TouristID string  `json:"tourist_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type panicResponse struct {
	EmergencyID string             `json:"emergency_id"`
	Status      string             `json:"status"`
	Responders  []domain.Responder `json:"responders"`
}

func (c *Client) ActivatePanic(ctx context.Context, touristID string, loc domain.LocationSample) (*dispatch.Result, error) {
	req := panicRequest{
		TouristID: touristID,
		Latitude:  loc.Lat,
		Longitude: loc.Lon,
		Timestamp: loc.Timestamp.Unix(),
	}
	var resp panicResponse
	if err := c.post(ctx, "/panic", req, &resp); err != nil {
		return nil, err
	}
	return &dispatch.Result{CaseRef: resp.EmergencyID, Responders: resp.Responders}, nil
}

func (c *Client) Deactivate(ctx context.Context, caseRef string) error {
	return c.post(ctx, "/deactivate", map[string]string{"emergency_id": caseRef}, nil)
}

func (c *Client) ReportIncident(ctx context.Context, report *domain.IncidentReport) error {
	return c.post(ctx, "/incident", report, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("dispatch %s: unexpected status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
