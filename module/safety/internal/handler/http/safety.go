package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Satya8176/Toursit/module/safety/domain"
)

type locationService interface {
	SaveLocation(ctx context.Context, loc *domain.TouristLocation) error
	GetLatest(ctx context.Context, touristID string) (*domain.TouristLocation, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TouristLocation, error)
}

type sessionPipeline interface {
	Process(ctx context.Context, touristID string, sample domain.LocationSample) error
	RecomputeScore(ctx context.Context, touristID string) (*domain.SafetyScore, error)
	Zones(touristID string) []string
	Stop(touristID string)
}

type zoneSource interface {
	Zones() []domain.GeofenceZone
}

type SafetyHandler struct {
	locations locationService
	pipeline  sessionPipeline
	geofence  zoneSource
}

func NewSafetyHandler(locations locationService, pipeline sessionPipeline, geofence zoneSource) *SafetyHandler {
	return &SafetyHandler{locations: locations, pipeline: pipeline, geofence: geofence}
}

func (h *SafetyHandler) Register(r *gin.RouterGroup) {
	r.POST("/tourists/:tourist_id/location", h.SubmitLocation)
	r.GET("/tourists/:tourist_id/location", h.GetLatestLocation)
	r.GET("/tourists/:tourist_id/history", h.GetHistory)
	r.GET("/tourists/:tourist_id/safety-score", h.GetSafetyScore)
	r.GET("/tourists/:tourist_id/zones", h.GetZoneMembership)
	r.DELETE("/tourists/:tourist_id/session", h.StopTracking)
	r.GET("/zones", h.GetZones)
}

type locationRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp" binding:"required"`
}

// SubmitLocation is the HTTP ingest path, mirroring the MQTT subscriber for
// clients without a broker connection.
func (h *SafetyHandler) SubmitLocation(c *gin.Context) {
	touristID := c.Param("tourist_id")

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample := domain.LocationSample{
		Lat:       req.Latitude,
		Lon:       req.Longitude,
		Accuracy:  req.Accuracy,
		Timestamp: time.Unix(req.Timestamp, 0),
	}
	ctx := c.Request.Context()

	if err := h.locations.SaveLocation(ctx, &domain.TouristLocation{TouristID: touristID, Sample: sample}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save location"})
		return
	}
	if err := h.pipeline.Process(ctx, touristID, sample); err != nil {
		// Rejected samples are not server errors; report the reason.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *SafetyHandler) GetLatestLocation(c *gin.Context) {
	touristID := c.Param("tourist_id")

	tl, err := h.locations.GetLatest(c.Request.Context(), touristID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tourist not found"})
		return
	}
	c.JSON(http.StatusOK, tl)
}

func (h *SafetyHandler) GetHistory(c *gin.Context) {
	touristID := c.Param("tourist_id")

	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	query := &domain.HistoryQuery{
		TouristID: touristID,
		Start:     time.Unix(start, 0),
		End:       time.Unix(end, 0),
	}

	locations, err := h.locations.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}
	if locations == nil {
		locations = []domain.TouristLocation{}
	}
	c.JSON(http.StatusOK, locations)
}

func (h *SafetyHandler) GetSafetyScore(c *gin.Context) {
	touristID := c.Param("tourist_id")

	score, err := h.pipeline.RecomputeScore(c.Request.Context(), touristID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no location data for tourist"})
		return
	}
	c.JSON(http.StatusOK, score)
}

func (h *SafetyHandler) GetZoneMembership(c *gin.Context) {
	touristID := c.Param("tourist_id")
	ids := h.pipeline.Zones(touristID)
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"zone_ids": ids})
}

func (h *SafetyHandler) StopTracking(c *gin.Context) {
	h.pipeline.Stop(c.Param("tourist_id"))
	c.Status(http.StatusNoContent)
}

func (h *SafetyHandler) GetZones(c *gin.Context) {
	c.JSON(http.StatusOK, h.geofence.Zones())
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return errLatitudeRange
	}
	if lon < -180 || lon > 180 {
		return errLongitudeRange
	}
	return nil
}
