// Package observability groups the logging, metrics and tracing packages.
//
//   - logging: slog construction and the request-scoped logger
//   - metrics: Prometheus collectors for HTTP traffic, provider calls,
//     aggregations, sessions and the filter catalog
//   - tracing: OpenTelemetry server spans and one child span per provider call
package observability
