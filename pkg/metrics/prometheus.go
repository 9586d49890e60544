// Package metrics provides Prometheus metrics for the papermatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the papermatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Feedback metrics
	feedbackApplied   *prometheus.CounterVec
	feedbackRetries   prometheus.Counter
	feedbackConflicts prometheus.Counter
	reconcileDrift    prometheus.Counter

	// Aggregation metrics
	statsComputations   prometheus.Counter
	statsLatency        prometheus.Histogram
	leaderboardBuilds   prometheus.Counter
	leaderboardLatency  prometheus.Histogram
	leaderboardSize     prometheus.Gauge
	matchesRecorded     prometheus.Counter
	aggregationFailures prometheus.Counter

	// Cache metrics
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec

	// Store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "papermatch",
		subsystem:        "core",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.feedbackApplied = m.counterVec("feedback_applied_total",
		"Feedback requests applied, by kind and resulting transition", "kind", "transition")
	m.feedbackRetries = m.counter("feedback_retries_total",
		"Toggle translations retried after losing a race on the same user and target")
	m.feedbackConflicts = m.counter("feedback_conflicts_total",
		"Toggle translations that could not be resolved after a retry")
	m.reconcileDrift = m.counter("reconcile_drift_total",
		"Targets whose stored counters differed from raw interactions during reconciliation")

	m.statsComputations = m.counter("stats_computations_total", "Paper stats blocks computed")
	m.statsLatency = m.histogram("stats_latency_milliseconds", "Latency of loading and folding a paper's results")
	m.leaderboardBuilds = m.counter("leaderboard_builds_total", "Leaderboards assembled")
	m.leaderboardLatency = m.histogram("leaderboard_latency_milliseconds", "Latency of assembling a leaderboard")
	m.leaderboardSize = m.gauge("leaderboard_size", "Entries in the most recently assembled leaderboard")
	m.matchesRecorded = m.counter("matches_recorded_total", "Pairwise matches recorded")
	m.aggregationFailures = m.counter("aggregation_failures_total", "Malformed result sequences rejected")

	m.cacheHits = m.counterVec("cache_hits_total", "Read-through cache hits", "cache")
	m.cacheMisses = m.counterVec("cache_misses_total", "Read-through cache misses", "cache")
	m.cacheInvalidations = m.counterVec("cache_invalidations_total", "Cache keys invalidated on writes", "cache")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Store operation latency", "operation")
	m.storeErrors = m.counterVec("store_errors_total", "Store operation failures", "operation")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpRateLimited = m.counterVec("http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint and method", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause time")
}

// Feedback.

func RecordFeedbackApplied(kind, transition string) {
	globalManager.feedbackApplied.WithLabelValues(kind, transition).Inc()
}

func RecordFeedbackRetry() { globalManager.feedbackRetries.Inc() }

func RecordFeedbackConflict() { globalManager.feedbackConflicts.Inc() }

func RecordReconcileDrift(n int) { globalManager.reconcileDrift.Add(float64(n)) }

// Aggregation.

func RecordStatsComputation(latencyMs float64) {
	globalManager.statsComputations.Inc()
	globalManager.statsLatency.Observe(latencyMs)
}

func RecordLeaderboardBuild(latencyMs float64, size int) {
	globalManager.leaderboardBuilds.Inc()
	globalManager.leaderboardLatency.Observe(latencyMs)
	globalManager.leaderboardSize.Set(float64(size))
}

func RecordMatchRecorded() { globalManager.matchesRecorded.Inc() }

func RecordAggregationFailure() { globalManager.aggregationFailures.Inc() }

// Cache.

func RecordCacheHit(cache string) { globalManager.cacheHits.WithLabelValues(cache).Inc() }

func RecordCacheMiss(cache string) { globalManager.cacheMisses.WithLabelValues(cache).Inc() }

func RecordCacheInvalidation(cache string, keys int) {
	globalManager.cacheInvalidations.WithLabelValues(cache).Add(float64(keys))
}

// Store.

func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

func RecordStoreError(operation string) { globalManager.storeErrors.WithLabelValues(operation).Inc() }

// HTTP.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

func RecordRateLimited(endpoint string) { globalManager.httpRateLimited.WithLabelValues(endpoint).Inc() }

func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom registry used by the package-level manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
