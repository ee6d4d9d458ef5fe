package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks job runs and configuration fallbacks.
type Metrics struct {
	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   *prometheus.HistogramVec
	JobLastSuccess       *prometheus.GaugeVec
	ConfigFallbacks      *prometheus.CounterVec
	ConfigFallbackActive prometheus.Gauge
}

// NewMetrics registers the worker metrics with reg, or with the default
// registerer when reg is nil. Call it once per registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Background job runs by job and status",
		}, []string{"job", "status"}),
		JobDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"job"}),
		JobLastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run of each job",
		}, []string{"job"}),
		ConfigFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Configuration values replaced by their default",
		}, []string{"field"}),
		ConfigFallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_fallback_active",
			Help: "1 if any worker configuration fallback is active",
		}),
	}
}

// RecordRun records one finished job run.
func (m *Metrics) RecordRun(job string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
	m.JobDurationSeconds.WithLabelValues(job).Observe(d.Seconds())
	if err == nil {
		m.JobLastSuccess.WithLabelValues(job).SetToCurrentTime()
	}
}

// RecordFallback counts a configuration fallback.
func (m *Metrics) RecordFallback(field string) {
	if m == nil {
		return
	}
	m.ConfigFallbacks.WithLabelValues(field).Inc()
}

// SetFallbackActive sets the fallback gauge.
func (m *Metrics) SetFallbackActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.ConfigFallbackActive.Set(1)
		return
	}
	m.ConfigFallbackActive.Set(0)
}
