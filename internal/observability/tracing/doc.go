// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP server wraps every request in a server span (see Middleware) and
// each outbound provider call opens a client span as its child, so a single
// aggregated request shows the three provider calls side by side.
//
// Example usage:
//
//	func fetch(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "provider.guardian")
//	    defer span.End()
//	    // ... call the provider ...
//	}
package tracing
