package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the newshub application.
var tracer = otel.Tracer("newshub")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// StartProviderSpan opens a client span for one outbound provider call.
// A nil tr falls back to the global tracer.
func StartProviderSpan(ctx context.Context, tr trace.Tracer, provider, endpoint string) (context.Context, trace.Span) {
	if tr == nil {
		tr = tracer
	}
	return tr.Start(ctx, "provider."+provider,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.name", provider),
			attribute.String("provider.endpoint", endpoint),
		),
	)
}

// EndWithError records err on the span, if any, and ends it.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
