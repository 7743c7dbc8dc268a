// Package metric collects send-pipeline counters on a private Prometheus
// registry. The process is one-shot, so instead of serving an endpoint the
// CLI logs a summary before exit.
package metric

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the pipeline metrics.
type Metrics struct {
	MessagesEncoded    *prometheus.CounterVec
	Offers             *prometheus.CounterVec
	SendFailures       prometheus.Counter
	TransportConnected prometheus.Gauge
}

// NewMetrics creates the pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesEncoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "telemsend",
				Subsystem: "messages",
				Name:      "encoded_total",
				Help:      "Total number of messages encoded",
			},
			[]string{"schema"},
		),

		Offers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "telemsend",
				Subsystem: "transport",
				Name:      "offers_total",
				Help:      "Total number of offer calls by result",
			},
			[]string{"result"},
		),

		SendFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "telemsend",
				Subsystem: "transport",
				Name:      "send_failures_total",
				Help:      "Total number of sends abandoned after budget exhaustion",
			},
		),

		TransportConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "telemsend",
				Subsystem: "transport",
				Name:      "connected",
				Help:      "Whether the publication has a subscriber connection (0/1)",
			},
		),
	}
}

// Registry owns the Prometheus registry the pipeline metrics live on.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with all pipeline metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		Metrics:            NewMetrics(),
	}
	r.prometheusRegistry.MustRegister(
		r.Metrics.MessagesEncoded,
		r.Metrics.Offers,
		r.Metrics.SendFailures,
		r.Metrics.TransportConnected,
	)
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// LogSummary writes every gathered sample to the logger at debug level.
func (r *Registry) LogSummary(logger *slog.Logger) {
	families, err := r.prometheusRegistry.Gather()
	if err != nil {
		logger.Warn("metric gather failed", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				attrs = append(attrs, "value", m.GetGauge().GetValue())
			}
			logger.Debug(mf.GetName(), attrs...)
		}
	}
}
