package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CartMetrics records cart mutations and checkout outcomes.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	itemCount prometheus.Gauge
	total     prometheus.Gauge
	checkouts *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer, namespace string) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations applied, by operation.",
	}, []string{"op"})
	itemCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cart_item_count",
		Help:      "Sum of line quantities after the last mutation.",
	})
	total := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cart_total_amount",
		Help:      "Cart total after the last mutation.",
	})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_orders_total",
		Help:      "Checkout attempts, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(mutations, itemCount, total, checkouts)
	return &CartMetrics{
		mutations: mutations,
		itemCount: itemCount,
		total:     total,
		checkouts: checkouts,
	}
}

// ObserveMutation counts op and publishes the derived totals it produced.
func (c *CartMetrics) ObserveMutation(op string, itemCount int, total decimal.Decimal) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
	c.itemCount.Set(float64(itemCount))
	c.total.Set(total.InexactFloat64())
}

// IncCheckout increments the checkout counter for the given outcome.
func (c *CartMetrics) IncCheckout(outcome string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
