// Package metrics exposes storefront business counters to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

type Metrics struct {
	OrdersPlaced      prometheus.Counter
	OrderRevenue      prometheus.Counter
	CheckoutRejected  *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	CartMutations     *prometheus.CounterVec
	DashboardDuration prometheus.Histogram
	EventsConsumed    *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders persisted by checkout.",
		}),
		OrderRevenue: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_revenue_total",
			Help:      "Sum of total amount of placed orders.",
		}),
		CheckoutRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejected_total",
			Help:      "Checkouts rejected before or during persistence.",
		}, []string{"reason"}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status changes applied by administrators.",
		}, []string{"from", "to"}),
		CartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart operations by kind.",
		}, []string{"operation"}),
		DashboardDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_duration_seconds",
			Help:      "Time spent computing the sales dashboard.",
			Buckets:   prometheus.DefBuckets,
		}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Order events received by the notification listener.",
		}, []string{"type"}),
	}
}
