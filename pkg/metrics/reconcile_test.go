package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReconcileMetricsRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReconcileMetrics(reg)

	m.ObserveDuration("null-stock", 120*time.Millisecond)
	m.AddRowsFixed("null-stock", 7)
	m.IncFailure("partner-fk")

	if got := testutil.ToFloat64(m.rowsFixed.WithLabelValues("null-stock")); got != 7 {
		t.Fatalf("rows fixed = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("partner-fk")); got != 1 {
		t.Fatalf("failures = %v, want 1", got)
	}
}

func TestReconcileMetricsNilSafe(t *testing.T) {
	var m *ReconcileMetrics
	m.ObserveDuration("x", time.Second)
	m.AddRowsFixed("x", 1)
	m.IncFailure("x")

	empty := NewReconcileMetrics(nil)
	empty.ObserveDuration("", time.Second)
	empty.AddRowsFixed("", 2)
	empty.IncFailure("")
}
