package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type locationMessage struct {
	TouristID string  `json:"tourist_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// startLat/startLon sit inside the sample zone set shipped in zones.json.
const (
	startLat = 15.2963
	startLon = 74.1245
)

type walker struct {
	id       string
	lat, lon float64
}

func newWalker(i int) *walker {
	return &walker{
		id:  fmt.Sprintf("tourist-%03d", i),
		lat: startLat + (rand.Float64()-0.5)*0.01,
		lon: startLon + (rand.Float64()-0.5)*0.01,
	}
}

// step moves the walker ~10-30m in a random direction.
func (w *walker) step() {
	w.lat += (rand.Float64() - 0.5) * 0.0005
	w.lon += (rand.Float64() - 0.5) * 0.0005
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("safety-mock-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	walkers := make([]*walker, 5)
	for i := range walkers {
		walkers[i] = newWalker(i + 1)
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		w := walkers[rand.Intn(len(walkers))]
		w.step()

		msg := locationMessage{
			TouristID: w.id,
			Latitude:  w.lat,
			Longitude: w.lon,
			Accuracy:  5 + rand.Float64()*25,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/tourists/%s/location", w.id)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
