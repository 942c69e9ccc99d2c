// Package monitoring exposes facade activity as Prometheus metrics.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"easyselenium/pkg/browser"
)

// MetricsLogger counts browser.Session calls; it is a browser.Logger.
type MetricsLogger struct {
	operations     *prometheus.CounterVec
	sessionsActive prometheus.Gauge
	gatherer       prometheus.Gatherer
}

// NewMetricsLogger registers its collectors on reg. A nil reg gets a fresh
// private registry.
func NewMetricsLogger(reg *prometheus.Registry) (*MetricsLogger, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &MetricsLogger{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "easyselenium",
				Name:      "operations_total",
				Help:      "Browser session operations by owner and operation",
			},
			[]string{"owner", "op"},
		),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "easyselenium",
			Name:      "sessions_active",
			Help:      "Sessions started and not yet released by their owner",
		}),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.operations, m.sessionsActive} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Notify implements browser.Logger
func (m *MetricsLogger) Notify(ev browser.Event) {
	m.operations.WithLabelValues(ev.Owner, ev.Op).Inc()
	switch ev.Op {
	case browser.OpStart:
		m.sessionsActive.Inc()
	case browser.OpClose, browser.OpCloseFailed:
		m.sessionsActive.Dec()
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *MetricsLogger) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
