package safety

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Satya8176/Toursit/module/safety/domain"
	handler "github.com/Satya8176/Toursit/module/safety/internal/handler/http"
	"github.com/Satya8176/Toursit/module/safety/internal/handler/subscriber"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/database/postgres"
	"github.com/Satya8176/Toursit/module/safety/repository/dispatch"
	"github.com/Satya8176/Toursit/module/safety/internal/repository/publisher/rabbitmq"
	redissignals "github.com/Satya8176/Toursit/module/safety/internal/repository/signals/redis"
	"github.com/Satya8176/Toursit/module/safety/repository/zones"
	"github.com/Satya8176/Toursit/module/safety/service"
)

// Options tunes the module beyond the service defaults.
type Options struct {
	Session     service.SessionConfig
	Emergency   service.EmergencyConfig
	ZoneRefresh time.Duration
}

func DefaultOptions() Options {
	return Options{
		Session:     service.DefaultSessionConfig(),
		Emergency:   service.DefaultEmergencyConfig(),
		ZoneRefresh: 5 * time.Minute,
	}
}

type Module struct {
	LocationSvc  *service.LocationService
	Registry     *service.SessionRegistry
	AlertSvc     *service.AlertService
	EmergencySvc *service.EmergencyService
	GeofenceSvc  *service.GeofenceService

	zoneStore   *zones.FileStore
	zoneRefresh time.Duration

	alertHandler     *handler.AlertHandler
	safetyHandler    *handler.SafetyHandler
	emergencyHandler *handler.EmergencyHandler
	subscriber       *subscriber.LocationSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, redisClient *goredis.Client, dispatcher dispatch.Dispatcher, zoneStore *zones.FileStore, opts Options) (*Module, error) {
	zoneSet, err := zoneStore.Zones()
	if err != nil {
		return nil, fmt.Errorf("zone config: %w", err)
	}

	pub, err := rabbitmq.NewEventPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	locationRepo := postgres.NewLocationRepo(db)
	alertRepo := postgres.NewAlertRepo(db)
	incidentRepo := postgres.NewIncidentRepo(db)
	signalSource := redissignals.NewSignalSource(redisClient)

	locationSvc := service.NewLocationService(locationRepo)
	geofenceSvc := service.NewGeofenceService(zoneSet, service.DefaultExitDebounce, func(z domain.GeofenceZone, err error) {
		log.Printf("geofence config error: %v", err)
	})
	alertSvc := service.NewAlertService(alertRepo, pub)
	scoreSvc := service.NewScoreService(signalSource, incidentRepo, domain.DefaultScoreWeights())
	registry := service.NewSessionRegistry(opts.Session, geofenceSvc, scoreSvc, alertSvc, pub)
	emergencySvc := service.NewEmergencyService(dispatcher, alertSvc, incidentRepo, pub, opts.Emergency)

	return &Module{
		LocationSvc:  locationSvc,
		Registry:     registry,
		AlertSvc:     alertSvc,
		EmergencySvc: emergencySvc,
		GeofenceSvc:  geofenceSvc,

		zoneStore:   zoneStore,
		zoneRefresh: opts.ZoneRefresh,

		alertHandler:     handler.NewAlertHandler(alertSvc),
		safetyHandler:    handler.NewSafetyHandler(locationSvc, registry, geofenceSvc),
		emergencyHandler: handler.NewEmergencyHandler(emergencySvc, registry),
		subscriber:       subscriber.NewLocationSubscriber(mqttClient, locationSvc, registry),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.alertHandler.Register(r)
	m.safetyHandler.Register(r)
	m.emergencyHandler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// Run drives the periodic loops: safety-score recompute, alert expiry and
// zone configuration refresh. Blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context) {
	go m.Registry.Run(ctx)

	if m.zoneRefresh <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(m.zoneRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			zoneSet, err := m.zoneStore.Zones()
			if err != nil {
				log.Printf("zone refresh failed: %v", err)
				continue
			}
			m.GeofenceSvc.SetZones(zoneSet)
		}
	}
}
