package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache metrics
var (
	// CacheLookupsTotal tracks freshness-cache lookups by outcome
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_lookups_total",
			Help: "Total number of freshness cache lookups",
		},
		[]string{"result"}, // hit | miss
	)

	// CacheEntries tracks the number of cached locations
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_cache_entries",
			Help: "Number of locations currently held in the freshness cache",
		},
	)
)

// Upstream provider metrics
var (
	// FetchDuration tracks upstream provider call latency
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Duration of upstream weather provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"}, // success | error
	)
)

// Alert pipeline metrics
var (
	// QueueDepth tracks readings waiting for alert evaluation
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_queue_depth",
			Help: "Number of readings queued for alert evaluation",
		},
	)

	// ReadingsProcessedTotal tracks worker item outcomes
	ReadingsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_readings_processed_total",
			Help: "Total readings drained by the alert evaluation worker",
		},
		[]string{"status"}, // success | error
	)

	// NotificationsRecordedTotal counts persisted alert firings
	NotificationsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_notifications_recorded_total",
			Help: "Total notifications recorded by the alert evaluation worker",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatherwatch_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// RecordFetch records one upstream provider call.
func RecordFetch(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCacheLookup records one freshness-cache lookup.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}
