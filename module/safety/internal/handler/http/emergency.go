package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/service"
)

var (
	errLatitudeRange  = errors.New("latitude: must be between -90 and 90")
	errLongitudeRange = errors.New("longitude: must be between -180 and 180")
)

type emergencyService interface {
	Activate(ctx context.Context, touristID string, loc domain.LocationSample) (*domain.EmergencyCase, error)
	Deactivate(ctx context.Context, touristID string) (*domain.EmergencyCase, error)
	RetryDispatch(ctx context.Context, touristID string) (*domain.EmergencyCase, error)
	Resolve(ctx context.Context, touristID string) (*domain.EmergencyCase, error)
	Current(touristID string) (*domain.EmergencyCase, bool)
	ReportIncident(ctx context.Context, report *domain.IncidentReport) error
}

type latestLocationSource interface {
	Latest(touristID string) (domain.LocationSample, bool)
}

type EmergencyHandler struct {
	emergency emergencyService
	tracker   latestLocationSource
}

func NewEmergencyHandler(emergency emergencyService, tracker latestLocationSource) *EmergencyHandler {
	return &EmergencyHandler{emergency: emergency, tracker: tracker}
}

func (h *EmergencyHandler) Register(r *gin.RouterGroup) {
	r.POST("/tourists/:tourist_id/panic", h.Activate)
	r.POST("/tourists/:tourist_id/panic/deactivate", h.Deactivate)
	r.POST("/tourists/:tourist_id/panic/retry", h.Retry)
	r.POST("/tourists/:tourist_id/panic/resolve", h.Resolve)
	r.GET("/tourists/:tourist_id/panic", h.Current)
	r.POST("/incidents", h.ReportIncident)
}

type panicRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// Activate opens a panic case. The location comes from the request body when
// supplied, otherwise from the tracker's latest accepted sample.
func (h *EmergencyHandler) Activate(c *gin.Context) {
	touristID := c.Param("tourist_id")

	// Body is optional; an empty or malformed body falls back to the
	// tracker's latest sample.
	var req panicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = panicRequest{}
	}

	loc, ok := h.tracker.Latest(touristID)
	if req.Latitude != 0 || req.Longitude != 0 {
		loc = domain.LocationSample{
			Lat:       req.Latitude,
			Lon:       req.Longitude,
			Accuracy:  req.Accuracy,
			Timestamp: time.Now(),
		}
		ok = true
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no known location for tourist"})
		return
	}

	ec, err := h.emergency.Activate(c.Request.Context(), touristID, loc)
	if errors.Is(err, service.ErrDispatchUnavailable) {
		// The case stays open for manual retry; surface both it and the
		// failure so the caller can act.
		c.JSON(http.StatusBadGateway, gin.H{"error": "dispatch unavailable", "case": ec})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "panic activation failed"})
		return
	}
	c.JSON(http.StatusOK, ec)
}

func (h *EmergencyHandler) Deactivate(c *gin.Context) {
	h.caseTransition(c, h.emergency.Deactivate)
}

func (h *EmergencyHandler) Resolve(c *gin.Context) {
	h.caseTransition(c, h.emergency.Resolve)
}

func (h *EmergencyHandler) Retry(c *gin.Context) {
	touristID := c.Param("tourist_id")
	ec, err := h.emergency.RetryDispatch(c.Request.Context(), touristID)
	switch {
	case errors.Is(err, service.ErrNoOpenCase):
		c.JSON(http.StatusNotFound, gin.H{"error": "no open emergency case"})
	case errors.Is(err, service.ErrStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDispatchUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "dispatch unavailable", "case": ec})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch retry failed"})
	default:
		c.JSON(http.StatusOK, ec)
	}
}

func (h *EmergencyHandler) Current(c *gin.Context) {
	ec, ok := h.emergency.Current(c.Param("tourist_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open emergency case"})
		return
	}
	c.JSON(http.StatusOK, ec)
}

type incidentRequest struct {
	TouristID   string                  `json:"tourist_id" binding:"required"`
	Type        domain.IncidentType     `json:"type" binding:"required"`
	Severity    domain.IncidentSeverity `json:"severity" binding:"required"`
	Description string                  `json:"description"`
	Latitude    float64                 `json:"latitude" binding:"required"`
	Longitude   float64                 `json:"longitude" binding:"required"`
}

func (h *EmergencyHandler) ReportIncident(c *gin.Context) {
	var req incidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := &domain.IncidentReport{
		TouristID:   req.TouristID,
		Type:        req.Type,
		Severity:    req.Severity,
		Description: req.Description,
		Location: domain.LocationSample{
			Lat:       req.Latitude,
			Lon:       req.Longitude,
			Timestamp: time.Now(),
		},
	}
	if err := h.emergency.ReportIncident(c.Request.Context(), report); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "incident report failed"})
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *EmergencyHandler) caseTransition(c *gin.Context, fn func(context.Context, string) (*domain.EmergencyCase, error)) {
	touristID := c.Param("tourist_id")
	ec, err := fn(c.Request.Context(), touristID)
	switch {
	case errors.Is(err, service.ErrNoOpenCase):
		c.JSON(http.StatusNotFound, gin.H{"error": "no open emergency case"})
	case errors.Is(err, service.ErrStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "emergency update failed"})
	default:
		c.JSON(http.StatusOK, ec)
	}
}
