package domain

import (
	"fmt"
	"math"
	"time"
)

// LocationSample is a single normalized position fix. Immutable once accepted
// by the tracker.
type LocationSample struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

type TouristLocation struct {
	TouristID string         `json:"tourist_id"`
	Sample    LocationSample `json:"sample"`
}

type HistoryQuery struct {
	TouristID string
	Start     time.Time
	End       time.Time
}

// GridCell buckets a coordinate into the spatial grid used for incident
// density and environmental signal lookups, roughly 1km cells.
func GridCell(lat, lon float64) string {
	return fmt.Sprintf("%.2f:%.2f", math.Floor(lat*100)/100, math.Floor(lon*100)/100)
}

// AnomalyKind classifies a rejected sample that implies implausible movement.
type AnomalyKind string

const (
	AnomalyRouteDeviation AnomalyKind = "route_deviation"
	AnomalySuddenStop     AnomalyKind = "sudden_stop"
)

// AnomalyCandidate is raised by the tracker alongside an implausible-jump
// rejection. It is a candidate only; the alert manager decides whether it
// becomes a visible alert.
type AnomalyCandidate struct {
	TouristID string
	Kind      AnomalyKind
	Sample    LocationSample
}
