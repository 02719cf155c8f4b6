package model

import "time"

const (
	SourceLive     = "live"
	SourceBaseline = "baseline"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is where the requester is. Both fields are optional.
type Location struct {
	District    string       `json:"district,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type EnvironmentalConditions struct {
	Timestamp             time.Time `json:"timestamp"`
	District              string    `json:"district"`
	Season                string    `json:"season"`
	WeeksSinceMonsoonPeak int       `json:"weeks_since_monsoon_peak"`
	DaysSinceLastRain     int       `json:"days_since_last_rain"`
	HourOfDay             int       `json:"hour_of_day"`
	AQI                   int       `json:"aqi"`
	TemperatureC          float64   `json:"temperature_c"`
	HumidityPct           float64   `json:"humidity_pct,omitempty"`
	LocalVectorIndex      int       `json:"local_vector_index"`
	LocalOutbreakAlert    string    `json:"local_outbreak_alert,omitempty"`
	Source                string    `json:"source"`
}
