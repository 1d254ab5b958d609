package domain

import "time"

// ScoreFactors are the named inputs to the composite safety score, each
// bounded to [0,100].
type ScoreFactors struct {
	LocationSafety      float64 `json:"location_safety"`
	TimeOfDay           float64 `json:"time_of_day"`
	CrowdDensity        float64 `json:"crowd_density"`
	WeatherConditions   float64 `json:"weather_conditions"`
	HistoricalIncidents float64 `json:"historical_incidents"`
}

// SafetyScore is recomputed wholesale on defined triggers and never
// partially mutated.
type SafetyScore struct {
	Overall     float64      `json:"overall"`
	Factors     ScoreFactors `json:"factors"`
	LastUpdated time.Time    `json:"last_updated"`
}

// ScoreWeights is the fixed-weight linear combination applied to the factors.
// Weights must sum to 1.
type ScoreWeights struct {
	LocationSafety      float64
	TimeOfDay           float64
	CrowdDensity        float64
	WeatherConditions   float64
	HistoricalIncidents float64
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		LocationSafety:      0.30,
		TimeOfDay:           0.20,
		CrowdDensity:        0.20,
		WeatherConditions:   0.15,
		HistoricalIncidents: 0.15,
	}
}
