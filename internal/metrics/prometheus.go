package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the prediction backend

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betpool_api_calls_total",
			Help: "Total number of football API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betpool_api_call_duration_seconds",
			Help:    "Duration of football API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betpool_sync_operations_total",
			Help: "Total number of fixture sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betpool_sync_duration_seconds",
			Help:    "Duration of fixture sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"type"},
	)

	LiveChecksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betpool_live_checks_skipped_total",
			Help: "Live sync ticks where the pre-check avoided a provider call",
		},
	)

	MatchesIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betpool_matches_total",
			Help: "Total number of matches in database",
		},
	)

	// Bet metrics
	BetsPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betpool_bets_placed_total",
			Help: "Total number of accepted bet upserts",
		},
	)

	BetsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betpool_bets_rejected_total",
			Help: "Total number of bets rejected by the gate",
		},
		[]string{"reason"},
	)

	PointsRecalculationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betpool_points_recalculations_total",
			Help: "Total number of bets whose points were recalculated",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betpool_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betpool_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betpool_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betpool_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betpool_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordAPICall records a football API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordLiveCheckSkipped records a live tick that needed no provider call
func RecordLiveCheckSkipped() {
	LiveChecksSkipped.Inc()
}

// RecordBetPlaced records an accepted bet upsert
func RecordBetPlaced() {
	BetsPlacedTotal.Inc()
}

// RecordBetRejected records a gate rejection by reason ("status" or "deadline")
func RecordBetRejected(reason string) {
	BetsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordPointsRecalculated records the bets touched by one recalculation
func RecordPointsRecalculated(count int) {
	PointsRecalculationsTotal.Add(float64(count))
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
