// Package logging builds the slog loggers used by the server and newsctl
// and carries a request-scoped logger through context.
//
// The HTTP logging middleware stores a logger tagged with the request id;
// handlers and the aggregator read it back with FromContext so every line
// about one request shares that id. Provider adapters add their provider
// name with ForProvider.
//
//	logger := logging.FromContext(ctx)
//	logging.ForProvider(logger, "guardian").Warn("upstream returned no results")
package logging
