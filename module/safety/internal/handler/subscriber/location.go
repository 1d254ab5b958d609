package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Satya8176/Toursit/module/safety/domain"
	"github.com/Satya8176/Toursit/module/safety/service"
)

const topicPattern = "/tourists/+/location"

type locationService interface {
	SaveLocation(ctx context.Context, loc *domain.TouristLocation) error
}

type sessionPipeline interface {
	Process(ctx context.Context, touristID string, sample domain.LocationSample) error
}

type locationMessage struct {
	TouristID string  `json:"tourist_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// LocationSubscriber is the broker-side ingest path: one MQTT topic per
// tourist, each message pushed through persistence and the safety pipeline.
type LocationSubscriber struct {
	client      mqtt.Client
	locationSvc locationService
	pipeline    sessionPipeline
}

func NewLocationSubscriber(client mqtt.Client, locationSvc locationService, pipeline sessionPipeline) *LocationSubscriber {
	return &LocationSubscriber{
		client:      client,
		locationSvc: locationSvc,
		pipeline:    pipeline,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid location message: %v", err)
		return
	}

	if err := validateLocationMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	sample := domain.LocationSample{
		Lat:       raw.Latitude,
		Lon:       raw.Longitude,
		Accuracy:  raw.Accuracy,
		Timestamp: time.Unix(raw.Timestamp, 0),
	}

	ctx := context.Background()

	if err := s.locationSvc.SaveLocation(ctx, &domain.TouristLocation{TouristID: raw.TouristID, Sample: sample}); err != nil {
		log.Printf("save location error: %v", err)
		return
	}

	if err := s.pipeline.Process(ctx, raw.TouristID, sample); err != nil {
		if isRejection(err) {
			log.Printf("sample dropped for %s: %v", raw.TouristID, err)
		} else {
			log.Printf("pipeline error for %s: %v", raw.TouristID, err)
		}
	}
}

func isRejection(err error) bool {
	return errors.Is(err, service.ErrLowAccuracy) ||
		errors.Is(err, service.ErrOutOfOrder) ||
		errors.Is(err, service.ErrImplausibleJump)
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.TouristID == "" {
		return fmt.Errorf("tourist_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must be non-negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
