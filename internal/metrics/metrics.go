package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the point-of-sale counters in a private registry.
// There is no listener; the registry is exported to a textfile for a
// node exporter's textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	sales            prometheus.Counter
	revenue          prometheus.Counter
	unitsSold        prometheus.Counter
	authAttempts     *prometheus.CounterVec
	catalogMutations *prometheus.CounterVec
	saleFailures     prometheus.Counter
}

// New creates and registers all counters
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sales: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sales_total",
			Help:      "Completed sales recorded in the ledger.",
		}),
		revenue: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "revenue_total",
			Help:      "Sum of recorded sale totals.",
		}),
		unitsSold: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "units_sold_total",
			Help:      "Product units sold.",
		}),
		authAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "auth_attempts_total",
			Help:      "Authentication attempts by role and result.",
		}, []string{"role", "result"}),
		catalogMutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "catalog_mutations_total",
			Help:      "Persisted catalog changes by operation.",
		}, []string{"op"}),
		saleFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sale_persist_failures_total",
			Help:      "Sales that could not be written to the ledger.",
		}),
	}
}

func (m *Metrics) ObserveSale(total float64, units int) {
	m.sales.Inc()
	m.revenue.Add(total)
	m.unitsSold.Add(float64(units))
}

func (m *Metrics) ObserveSaleFailure() {
	m.saleFailures.Inc()
}

func (m *Metrics) ObserveAuth(role string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.authAttempts.WithLabelValues(role, result).Inc()
}

func (m *Metrics) ObserveCatalogMutation(op string) {
	m.catalogMutations.WithLabelValues(op).Inc()
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
