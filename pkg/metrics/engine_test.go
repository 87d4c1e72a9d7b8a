package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineMetricsCount(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.IncOrderPlaced()
	m.IncOrderPlaced()
	m.IncPaymentCredited()
	m.IncConflict("insufficient_funds")
	m.IncConflict("insufficient_funds")
	m.IncConflict("")

	if got := testutil.ToFloat64(m.ordersPlaced); got != 2 {
		t.Fatalf("orders placed: got %v", got)
	}
	if got := testutil.ToFloat64(m.paymentsCredited); got != 1 {
		t.Fatalf("payments credited: got %v", got)
	}
	if got := testutil.ToFloat64(m.conflicts.WithLabelValues("insufficient_funds")); got != 2 {
		t.Fatalf("conflict counter: got %v", got)
	}
	if got := testutil.ToFloat64(m.conflicts.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("unknown conflict counter: got %v", got)
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *EngineMetrics
	m.IncOrderPlaced()
	m.IncOrderCancelled()
	m.IncPaymentCredited()
	m.IncTransfer()
	m.IncConflict("x")

	unregistered := NewEngineMetrics(nil)
	unregistered.IncOrderPlaced()
}
