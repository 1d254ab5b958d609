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

type alertService interface {
	Create(ctx context.Context, req service.CreateAlert) (*domain.Alert, error)
	Active(ctx context.Context, touristID string) []*domain.Alert
	UnreadCount(ctx context.Context, touristID string) int
	MarkAsRead(ctx context.Context, id string) error
	MarkAsAcknowledged(ctx context.Context, id string) error
	Clear(ctx context.Context, id string) error
}

type AlertHandler struct {
	alerts alertService
}

func NewAlertHandler(alerts alertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) Register(r *gin.RouterGroup) {
	r.GET("/tourists/:tourist_id/alerts", h.List)
	r.POST("/alerts", h.Create)
	r.PATCH("/alerts/:alert_id/read", h.MarkAsRead)
	r.PATCH("/alerts/:alert_id/acknowledge", h.Acknowledge)
	r.DELETE("/alerts/:alert_id", h.Clear)
}

func (h *AlertHandler) List(c *gin.Context) {
	touristID := c.Param("tourist_id")
	ctx := c.Request.Context()

	alerts := h.alerts.Active(ctx, touristID)
	if alerts == nil {
		alerts = []*domain.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts":       alerts,
		"unread_count": h.alerts.UnreadCount(ctx, touristID),
	})
}

type createAlertRequest struct {
	TouristID      string                 `json:"tourist_id" binding:"required"`
	Type           domain.AlertType       `json:"type" binding:"required"`
	SubType        domain.AlertSubType    `json:"sub_type" binding:"required"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Severity       domain.Severity        `json:"severity" binding:"required"`
	Location       *domain.LocationSample `json:"location"`
	TTLSeconds     int64                  `json:"ttl_seconds"`
	ActionRequired bool                   `json:"action_required"`
}

// Create lets external collaborators (anomaly detectors, weather feeds) file
// alerts through the same deduplicating lifecycle as engine-raised ones.
func (h *AlertHandler) Create(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), service.CreateAlert{
		TouristID:      req.TouristID,
		Type:           req.Type,
		SubType:        req.SubType,
		Title:          req.Title,
		Message:        req.Message,
		Severity:       req.Severity,
		Location:       req.Location,
		TTL:            time.Duration(req.TTLSeconds) * time.Second,
		ActionRequired: req.ActionRequired,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (h *AlertHandler) MarkAsRead(c *gin.Context) {
	h.transition(c, h.alerts.MarkAsRead)
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	h.transition(c, h.alerts.MarkAsAcknowledged)
}

func (h *AlertHandler) Clear(c *gin.Context) {
	h.transition(c, h.alerts.Clear)
}

func (h *AlertHandler) transition(c *gin.Context, fn func(context.Context, string) error) {
	id := c.Param("alert_id")
	err := fn(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
	case errors.Is(err, service.ErrStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "alert update failed"})
	default:
		c.Status(http.StatusNoContent)
	}
}
