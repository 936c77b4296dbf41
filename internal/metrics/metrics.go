// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Ranking Metrics
	RankingGenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_generate_duration_seconds",
			Help:    "Time to produce a ranked candidate list",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"}, // "quick", "detailed", "recompute"
	)

	RankingCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_candidates_returned",
			Help:    "Number of ranked coupons returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200},
		},
	)

	SnapshotRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_snapshot_recomputes_total",
			Help: "Total number of per-user snapshot recomputations",
		},
		[]string{"result"}, // "success", "empty", "failure"
	)

	SnapshotSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_snapshot_entries",
			Help:    "Entries written per snapshot recomputation",
			Buckets: []float64{0, 10, 25, 50, 100, 200, 500},
		},
	)

	FeedPagesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_feed_pages_total",
			Help: "Total number of feed pages served",
		},
	)

	// Sweep Metrics
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_sweep_duration_seconds",
			Help:    "Duration of a full snapshot sweep",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	SweepUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_sweep_users_total",
			Help: "Users processed by snapshot sweeps",
		},
		[]string{"result"}, // "success", "failure"
	)

	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranking_sweep_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last completed sweep",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"cache_type", "operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// maxErrorLabel bounds label cardinality for error messages.
const maxErrorLabel = 50

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > maxErrorLabel {
			errorType = errorType[:maxErrorLabel]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordGenerate records one ranking run.
func RecordGenerate(mode string, duration time.Duration, returned int) {
	RankingGenerateDuration.WithLabelValues(mode).Observe(duration.Seconds())
	RankingCandidates.Observe(float64(returned))
}

// RecordRecompute records a snapshot recomputation. A nil error with zero
// entries counts as "empty".
func RecordRecompute(duration time.Duration, entries int, err error) {
	RankingGenerateDuration.WithLabelValues("recompute").Observe(duration.Seconds())
	switch {
	case err != nil:
		SnapshotRecomputes.WithLabelValues("failure").Inc()
	case entries == 0:
		SnapshotRecomputes.WithLabelValues("empty").Inc()
	default:
		SnapshotRecomputes.WithLabelValues("success").Inc()
		SnapshotSize.Observe(float64(entries))
	}
}

// RecordFeedPage counts a served feed page.
func RecordFeedPage() {
	FeedPagesServed.Inc()
}

// RecordSweep records a completed sweep.
func RecordSweep(duration time.Duration, succeeded, failed int) {
	SweepDuration.Observe(duration.Seconds())
	SweepUsers.WithLabelValues("success").Add(float64(succeeded))
	SweepUsers.WithLabelValues("failure").Add(float64(failed))
	SweepLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordCacheLookup records a hit or miss for cacheType.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordCacheError counts a failed cache backend call.
func RecordCacheError(cacheType, operation string) {
	CacheErrors.WithLabelValues(cacheType, operation).Inc()
}

// RecordBreakerTransition updates the breaker gauge and transition counter.
// States are gobreaker's String() forms.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch strings.ToLower(state) {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
