package metrics

import "github.com/prometheus/client_golang/prometheus"

// FulfillmentMetrics tracks supplier auto-ordering.
type FulfillmentMetrics struct {
	placed    prometheus.Counter
	failed    *prometheus.CounterVec
	queueSize prometheus.Gauge
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auto_orders_placed_total",
		Help:      "Supplier orders placed automatically.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auto_orders_failed_total",
		Help:      "Auto-order attempts that did not place a supplier order.",
	}, []string{"reason"})
	queueSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fulfillment_queue_size",
		Help:      "Pending orders picked up by the last queue run.",
	})
	reg.MustRegister(placed, failed, queueSize)
	return &FulfillmentMetrics{placed: placed, failed: failed, queueSize: queueSize}
}

func (m *FulfillmentMetrics) IncPlaced() {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
}

// IncFailed counts a failed attempt; reason should be low cardinality (not_found, ineligible, error).
func (m *FulfillmentMetrics) IncFailed(reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *FulfillmentMetrics) SetQueueSize(n int) {
	if m == nil || m.queueSize == nil {
		return
	}
	m.queueSize.Set(float64(n))
}
