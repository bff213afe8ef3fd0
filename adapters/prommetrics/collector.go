// Package prommetrics exports SDK outcomes as Prometheus counters.
package prommetrics

import (
	"github.com/linkforty/go-linkforty/pkg/interfaces/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts resolve, deeplink and install outcomes.
type Collector struct {
	resolves  *prometheus.CounterVec
	deepLinks *prometheus.CounterVec
	installs  *prometheus.CounterVec
	other     *prometheus.CounterVec
}

var _ metrics.Collector = (*Collector)(nil)

// New registers the counters with reg under namespace.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if namespace == "" {
		namespace = "linkforty"
	}
	c := &Collector{
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Remote link resolutions by outcome.",
		}, []string{metrics.LabelOutcome}),
		deepLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deeplink_deliveries_total",
			Help:      "Direct deep link deliveries by data source.",
		}, []string{metrics.LabelOutcome}),
		installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "install_reports_total",
			Help:      "Install reports by attribution outcome.",
		}, []string{metrics.LabelOutcome}),
		other: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Other SDK operations.",
		}, []string{"operation", metrics.LabelOutcome}),
	}
	if reg != nil {
		for _, cv := range []*prometheus.CounterVec{c.resolves, c.deepLinks, c.installs, c.other} {
			if err := reg.Register(cv); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Record implements metrics.Collector.
func (c *Collector) Record(operation string, labels map[string]string) {
	outcome := labels[metrics.LabelOutcome]
	if outcome == "" {
		outcome = "unknown"
	}
	switch operation {
	case metrics.OpResolve:
		c.resolves.WithLabelValues(outcome).Inc()
	case metrics.OpDeepLink:
		c.deepLinks.WithLabelValues(outcome).Inc()
	case metrics.OpInstall:
		c.installs.WithLabelValues(outcome).Inc()
	default:
		c.other.WithLabelValues(operation, outcome).Inc()
	}
}
