package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records metadata for data reconciliation runs.
type ReconcileMetrics struct {
	duration  *prometheus.HistogramVec
	rowsFixed *prometheus.CounterVec
	failure   *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconcile_rule_duration_seconds",
		Help:    "Duration of reconciliation rules in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"rule"})
	rowsFixed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_rows_fixed",
		Help: "Rows repaired per reconciliation rule.",
	}, []string{"rule"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_rule_failure",
		Help: "Failed reconciliation rule executions.",
	}, []string{"rule"})
	reg.MustRegister(duration, rowsFixed, failure)
	return &ReconcileMetrics{
		duration:  duration,
		rowsFixed: rowsFixed,
		failure:   failure,
	}
}

// ObserveDuration records the duration for the named rule.
func (m *ReconcileMetrics) ObserveDuration(rule string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(rule)).Observe(duration.Seconds())
}

// AddRowsFixed increments the repaired-row counter for the named rule.
func (m *ReconcileMetrics) AddRowsFixed(rule string, n int64) {
	if m == nil || m.rowsFixed == nil {
		return
	}
	m.rowsFixed.WithLabelValues(normalizeLabel(rule)).Add(float64(n))
}

// IncFailure increments the failure counter for the named rule.
func (m *ReconcileMetrics) IncFailure(rule string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(rule)).Inc()
}

func normalizeLabel(rule string) string {
	if rule == "" {
		return "unknown"
	}
	return rule
}
