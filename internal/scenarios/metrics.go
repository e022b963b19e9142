package scenarios

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks scenario outcomes on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	results  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the suite collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regform",
			Name:      "scenario_results_total",
			Help:      "Scenario results by group and status.",
		}, []string{"group", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "regform",
			Name:      "scenario_duration_seconds",
			Help:      "Wall time of a scenario including session setup.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"group"}),
	}
	m.registry.MustRegister(m.results, m.duration)
	return m
}

// Observe records res.
func (m *Metrics) Observe(res Result) {
	m.results.WithLabelValues(res.Group, string(res.Status)).Inc()
	if res.Status != StatusSkipped {
		m.duration.WithLabelValues(res.Group).Observe((time.Duration(res.DurationMS) * time.Millisecond).Seconds())
	}
}

// Registry exposes the collectors, e.g. for a push gateway.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
