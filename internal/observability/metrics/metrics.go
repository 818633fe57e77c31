package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus observability primitives for the finance core.
type Metrics struct {
	allocationRuns     *prometheus.CounterVec
	allocationOutcomes *prometheus.CounterVec
	allocationDuration prometheus.Histogram
	reminderOutcomes   *prometheus.CounterVec
	sweepErrors        prometheus.Counter
	snapshotWrites     *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers and returns Prometheus metrics for the finance core.
func New() *Metrics {
	return &Metrics{
		allocationRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolaris_allocation_runs_total",
			Help: "Counts allocation runs by final status.",
		}, []string{"status"}),
		allocationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolaris_allocation_outcomes_total",
			Help: "Counts per-payment allocation outcomes (applied, skipped).",
		}, []string{"outcome"}),
		allocationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "escolaris_allocation_duration_seconds",
			Help:    "Allocation run durations.",
			Buckets: prometheus.DefBuckets,
		}),
		reminderOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolaris_reminder_outcomes_total",
			Help: "Counts reminder sweep outcomes (sent, suppressed, omitted, failed).",
		}, []string{"outcome"}),
		sweepErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "escolaris_reminder_sweep_errors_total",
			Help: "Counts per-record errors during reminder sweeps.",
		}),
		snapshotWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolaris_risk_snapshot_writes_total",
			Help: "Counts risk snapshot writes by result (created, exists).",
		}, []string{"result"}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolaris_http_requests_total",
			Help: "Counts HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "escolaris_http_request_duration_seconds",
			Help:    "HTTP request latency per route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) RecordAllocationRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.allocationRuns.WithLabelValues(status).Inc()
	m.allocationDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordAllocationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.allocationOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordReminderOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reminderOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSweepError() {
	if m == nil {
		return
	}
	m.sweepErrors.Inc()
}

func (m *Metrics) RecordSnapshotWrite(result string) {
	if m == nil {
		return
	}
	m.snapshotWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
