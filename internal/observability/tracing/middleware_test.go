package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

/* ───── ヘルパ ───── */

// useRecorder points the package tracer at an in-memory exporter for one test.
func useRecorder(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := tracer
	tracer = tp.Tracer("newshub")
	t.Cleanup(func() {
		tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return exporter, tp
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

/* ───── Middleware ───── */

func TestMiddleware_NamesSpanAfterRoutePattern(t *testing.T) {
	exporter, _ := useRecorder(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /articles/item/{id...}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Middleware(mux).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/articles/item/guardian-world/2024/x", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /articles/item/{id...}", spans[0].Name)

	attrs := attrMap(spans[0].Attributes)
	assert.Equal(t, "GET", attrs["http.method"].AsString())
	assert.Equal(t, "GET /articles/item/{id...}", attrs["http.route"].AsString())
	assert.Equal(t, int64(200), attrs["http.status_code"].AsInt64())
}

func TestMiddleware_FallsBackToPathWithoutPattern(t *testing.T) {
	exporter, _ := useRecorder(t)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/filters", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /filters", spans[0].Name)
}

func TestMiddleware_AddsTraceIDToResponse(t *testing.T) {
	useRecorder(t)

	rr := httptest.NewRecorder()
	Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/articles", nil))

	traceID := rr.Header().Get("X-Trace-Id")
	assert.Len(t, traceID, 32)
}

func TestMiddleware_PropagatesTraceContext(t *testing.T) {
	exporter, _ := useRecorder(t)
	prevProp := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prevProp) })

	req := httptest.NewRequest(http.MethodGet, "/articles/top", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
}

func TestMiddleware_ErrorAttribute(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantError bool
	}{
		{name: "5xx marked", status: http.StatusBadGateway, wantError: true},
		{name: "4xx not marked", status: http.StatusNotFound, wantError: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, _ := useRecorder(t)

			Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			_, found := attrMap(spans[0].Attributes)["error"]
			assert.Equal(t, tt.wantError, found)
			assert.Equal(t, tt.wantError, spans[0].Status.Code == codes.Error)
		})
	}
}

/* ───── provider spans ───── */

func TestStartProviderSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := StartProviderSpan(context.Background(), tp.Tracer("test"), "guardian", "/search")
	EndWithError(span, errors.New("boom"))

	_, second := StartProviderSpan(context.Background(), tp.Tracer("test"), "nytimes", "/topstories")
	EndWithError(second, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "provider.guardian", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "/search", attrMap(spans[0].Attributes)["provider.endpoint"].AsString())
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
}
