// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Provider call metrics (outcome, error kind, latency, circuit state)
//   - Aggregation metrics (merge duration, merged articles, absorbed failures)
//   - Search session and filter catalog metrics
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	resp, err := client.Get(ctx, "/search", query)
//	if err != nil {
//	    metrics.RecordProviderRequest("guardian", "failure", "rate_limit", time.Since(start))
//	}
package metrics
