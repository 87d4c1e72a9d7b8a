package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics counts the money- and stock-moving outcomes of the engine.
type EngineMetrics struct {
	ordersPlaced     prometheus.Counter
	ordersCancelled  prometheus.Counter
	paymentsCredited prometheus.Counter
	transfers        prometheus.Counter
	conflicts        *prometheus.CounterVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders successfully placed.",
	})
	ordersCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled and refunded.",
	})
	paymentsCredited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_credited_total",
		Help: "Gateway payments credited to wallets.",
	})
	transfers := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Completed peer-to-peer wallet transfers.",
	})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_conflicts_total",
		Help: "Expected business conflicts returned to callers.",
	}, []string{"reason"})
	reg.MustRegister(ordersPlaced, ordersCancelled, paymentsCredited, transfers, conflicts)
	return &EngineMetrics{
		ordersPlaced:     ordersPlaced,
		ordersCancelled:  ordersCancelled,
		paymentsCredited: paymentsCredited,
		transfers:        transfers,
		conflicts:        conflicts,
	}
}

// IncOrderPlaced increments the placed-order counter.
func (m *EngineMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// IncOrderCancelled increments the cancelled-order counter.
func (m *EngineMetrics) IncOrderCancelled() {
	if m == nil || m.ordersCancelled == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// IncPaymentCredited increments the credited-payment counter.
func (m *EngineMetrics) IncPaymentCredited() {
	if m == nil || m.paymentsCredited == nil {
		return
	}
	m.paymentsCredited.Inc()
}

// IncTransfer increments the completed-transfer counter.
func (m *EngineMetrics) IncTransfer() {
	if m == nil || m.transfers == nil {
		return
	}
	m.transfers.Inc()
}

// IncConflict counts an expected business conflict (insufficient stock,
// insufficient funds, replayed payment, double cancel).
func (m *EngineMetrics) IncConflict(reason string) {
	if m == nil || m.conflicts == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.conflicts.WithLabelValues(reason).Inc()
}
