package domain

import "time"

// AlertField identifies the reading field a threshold alert targets.
type AlertField string

const (
	FieldTemperature AlertField = "temperature"
	FieldHumidity    AlertField = "humidity"
	FieldPressure    AlertField = "pressure"
)

// AlertFields lists the fields alerts may target.
var AlertFields = []AlertField{FieldTemperature, FieldHumidity, FieldPressure}

// Comparators lists the comparison operators alerts may use.
var Comparators = []string{"<", "<=", ">", ">="}

// ValidAlertField reports whether f belongs to the enumerated field set.
func ValidAlertField(f AlertField) bool {
	switch f {
	case FieldTemperature, FieldHumidity, FieldPressure:
		return true
	}
	return false
}

// ValidComparator reports whether op belongs to the enumerated operator set.
func ValidComparator(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	}
	return false
}

// Alert is a user's stored threshold rule on one weather field for one
// location. Location is stored normalized (lower-case) so the worker's
// lookup matches cache-keyed readings.
type Alert struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"-"`
	Location   string     `json:"location"`
	Field      AlertField `json:"column_name"`
	Comparator string     `json:"comparator"`
	Threshold  float64    `json:"number"`
}

// Notification is an immutable record of one alert firing against one
// reading. ActualValue is the reading's field value captured at enqueue
// time; it is never re-fetched.
type Notification struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"-"`
	Location    string     `json:"location"`
	Field       AlertField `json:"column_name"`
	Comparator  string     `json:"comparator"`
	Threshold   float64    `json:"number"`
	ActualValue float64    `json:"actual_number"`
	Timestamp   time.Time  `json:"timestamp"`
}
