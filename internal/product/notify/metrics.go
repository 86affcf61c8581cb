package notify

import (
	"github.com/abgdnv/storefront/internal/product/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "storefront"

// Metrics exports the collection size and a per-operation change counter.
type Metrics struct {
	products prometheus.Gauge
	changes  *prometheus.CounterVec
	size     func() int
}

// NewMetrics registers the collectors with reg. When size is not nil the gauge is
// set from it on every change instead of from the change snapshot, which may be stale.
func NewMetrics(reg prometheus.Registerer, size func() int) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		size: size,
		products: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "products",
			Help:      "Number of products in the local collection",
		}),
		changes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "changes_total",
			Help:      "Total number of writes to the local collection",
		}, []string{"op"}),
	}
}

// Handle is a store.Listener.
func (m *Metrics) Handle(c store.Change) {
	n := len(c.Products)
	if m.size != nil {
		n = m.size()
	}
	m.products.Set(float64(n))
	m.changes.WithLabelValues(string(c.Op)).Inc()
}
