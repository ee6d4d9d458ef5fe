package metrics

import (
	"time"
)

// RecordProviderRequest records one outbound provider call.
// outcome should be "success" or "failure"; kind names the error kind on failure.
func RecordProviderRequest(provider, outcome, kind string, duration time.Duration) {
	ProviderRequestsTotal.WithLabelValues(provider, outcome, kind).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordProviderArticles records how many articles a provider returned.
func RecordProviderArticles(provider string, count int) {
	if count <= 0 {
		return
	}
	ProviderArticlesTotal.WithLabelValues(provider).Add(float64(count))
}

// SetCircuitState records the breaker state for a provider.
func SetCircuitState(provider string, state int) {
	ProviderCircuitState.WithLabelValues(provider).Set(float64(state))
}

// RecordAggregation records one fan-out and the size of the merged list.
func RecordAggregation(operation string, merged int, duration time.Duration) {
	AggregationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	AggregatedArticlesTotal.WithLabelValues(operation).Add(float64(merged))
}

// RecordAbsorbedFailure records a provider failure replaced by an empty result.
func RecordAbsorbedFailure(provider, kind string) {
	AbsorbedFailuresTotal.WithLabelValues(provider, kind).Inc()
}

// RecordSessionResult records the state a session landed in after a fetch.
func RecordSessionResult(state string) {
	SessionResultsTotal.WithLabelValues(state).Inc()
}

// RecordStaleResponse records a discarded, superseded fetch result.
func RecordStaleResponse() {
	StaleResponsesTotal.Inc()
}

// UpdateSessionsActive sets the number of live search sessions.
func UpdateSessionsActive(count int) {
	SessionsActive.Set(float64(count))
}

// RecordCatalogRefresh records a catalog refresh and the resulting cache size.
func RecordCatalogRefresh(success bool, sources, categories int) {
	result := "success"
	if !success {
		result = "failure"
	}
	CatalogRefreshTotal.WithLabelValues(result).Inc()
	if success {
		CatalogEntries.WithLabelValues("sources").Set(float64(sources))
		CatalogEntries.WithLabelValues("categories").Set(float64(categories))
	}
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_preferences").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
