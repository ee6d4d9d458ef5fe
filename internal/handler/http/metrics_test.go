package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/observability/metrics"
)

/* ───── ヘルパ ───── */

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /articles/item/{id...}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x"}`))
	})
	mux.HandleFunc("GET /boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return mux
}

func counter(method, route, status string) float64 {
	return testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(method, route, status))
}

/* ───── MetricsMiddleware ───── */

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	mux := metricsMux()
	h := Chain(mux, RoutePattern(mux), MetricsMiddleware)

	route := "GET /articles/item/{id...}"
	before := counter("GET", route, "200")

	for _, id := range []string{"guardian-world/2024/a", "nytimes-nyt://article/1"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/item/"+url.PathEscape(id), nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, before+2, counter("GET", route, "200"), "ids must collapse onto one series")
}

func TestMetricsMiddleware_StatusAndUnmatched(t *testing.T) {
	mux := metricsMux()
	h := Chain(mux, RoutePattern(mux), MetricsMiddleware)

	boomBefore := counter("GET", "GET /boom", "502")
	missBefore := counter("GET", "unmatched", "404")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, boomBefore+1, counter("GET", "GET /boom", "502"))
	assert.Equal(t, missBefore+1, counter("GET", "unmatched", "404"))
}

func TestMetricsMiddleware_ActiveConnectionsReturnsToBaseline(t *testing.T) {
	mux := metricsMux()
	h := Chain(mux, RoutePattern(mux), MetricsMiddleware)

	before := testutil.ToFloat64(metrics.ActiveConnections)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/item/a", nil))
	assert.Equal(t, before, testutil.ToFloat64(metrics.ActiveConnections))
}

/* ───── MetricsHandler ───── */

func TestMetricsHandler(t *testing.T) {
	metrics.RecordHTTPRequest("GET", "GET /healthz", "200", 0, 0)

	srv := httptest.NewServer(MetricsHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "http_requests_total"))
}
