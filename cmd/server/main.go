package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Satya8176/Toursit/config"
	"github.com/Satya8176/Toursit/module/safety"
	"github.com/Satya8176/Toursit/module/safety/repository/dispatch/httpdispatch"
	"github.com/Satya8176/Toursit/module/safety/repository/zones"
)

func main() {
	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	redisClient, err := config.NewRedis(cfg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	dispatcher := httpdispatch.NewClient(cfg.DispatchBaseURL, 10*time.Second)
	zoneStore := zones.NewFileStore(cfg.ZonesPath)

	safetyModule, err := safety.Build(db, amqpConn, mqttClient, redisClient, dispatcher, zoneStore, safety.DefaultOptions())
	if err != nil {
		log.Fatalf("safety module: %v", err)
	}

	if err := safetyModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go safetyModule.Run(ctx)

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, redisClient)
	health.Register(r)

	safetyModule.RegisterRoutes(&r.RouterGroup)

	log.Printf("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
