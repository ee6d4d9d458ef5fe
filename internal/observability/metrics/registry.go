// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of in-flight HTTP requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Provider metrics track outbound calls to the news providers
var (
	// ProviderRequestsTotal counts provider calls by outcome and error kind.
	// outcome is success or failure; kind is empty on success.
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of outbound provider requests",
		},
		[]string{"provider", "outcome", "kind"},
	)

	// ProviderRequestDuration measures provider round trips, including rate limiter wait
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Outbound provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
		[]string{"provider"},
	)

	// ProviderArticlesTotal counts articles mapped from each provider
	ProviderArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_articles_total",
			Help: "Total number of articles returned by each provider",
		},
		[]string{"provider"},
	)

	// ProviderCircuitState mirrors the circuit breaker state per provider (0 closed, 1 half-open, 2 open)
	ProviderCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_circuit_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)
)

// Aggregation metrics track the merge layer
var (
	// AggregationDuration measures one fan-out plus merge
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Time taken to query all providers and merge the results",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// AggregatedArticlesTotal counts merged articles before pagination
	AggregatedArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregated_articles_total",
			Help: "Total number of articles merged across providers before pagination",
		},
		[]string{"operation"},
	)

	// AbsorbedFailuresTotal counts provider failures substituted by an empty result
	AbsorbedFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_absorbed_failures_total",
			Help: "Total number of provider failures absorbed by the aggregator",
		},
		[]string{"provider", "kind"},
	)
)

// Session and catalog metrics
var (
	// SessionsActive tracks live search sessions
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_sessions_active",
			Help: "Number of live search sessions",
		},
	)

	// SessionResultsTotal counts applied session fetches by resulting state
	SessionResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_session_results_total",
			Help: "Total number of session fetches by resulting state",
		},
		[]string{"state"},
	)

	// StaleResponsesTotal counts fetch results discarded because a newer transition superseded them
	StaleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_session_stale_responses_total",
			Help: "Total number of superseded fetch results discarded by sessions",
		},
	)

	// CatalogRefreshTotal counts catalog refreshes by result
	CatalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_total",
			Help: "Total number of filter catalog refreshes",
		},
		[]string{"result"},
	)

	// CatalogEntries tracks cached catalog size by kind (sources, categories)
	CatalogEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_entries",
			Help: "Number of cached filter catalog entries",
		},
		[]string{"kind"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
