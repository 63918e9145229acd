package domain

import (
	"strings"
	"time"
)

// Reading represents one normalized weather snapshot for a location at a
// point in time. Immutable once produced by the provider.
type Reading struct {
	Location    string    `json:"location"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	MainWeather string    `json:"main_weather"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"temperature_feels_like"`
	TempMin     float64   `json:"temperature_min"`
	TempMax     float64   `json:"temperature_max"`
	Pressure    float64   `json:"pressure"`
	Humidity    float64   `json:"humidity"`
	Visibility  float64   `json:"visibility"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDeg     float64   `json:"wind_deg"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Timestamp   time.Time `json:"timestamp"`
}

// FieldValue resolves an alert field to the reading's value. Returns false
// for fields alerts cannot target, so callers can skip rather than fail.
func (r Reading) FieldValue(f AlertField) (float64, bool) {
	switch f {
	case FieldTemperature:
		return r.Temperature, true
	case FieldHumidity:
		return r.Humidity, true
	case FieldPressure:
		return r.Pressure, true
	default:
		return 0, false
	}
}

// NormalizeLocation canonicalizes a user-supplied location for cache keys
// and alert matching. Cache keys and stored alert locations share one
// normalization so alerts always see the readings they target.
func NormalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
