package aggsolver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OwlPlatform/owl-common/metric"
)

// backlogMetrics exports a SampleBacklog's occupancy and drop count as
// Prometheus metrics, labeled by the backlog's prefix. NewSampleBacklog
// always uses the prefix "aggsolver_backlog", so one registry holds the
// metrics of at most one backlog.
type backlogMetrics struct {
	pushes      prometheus.Counter
	drops       prometheus.Counter
	size        prometheus.Gauge
	utilization prometheus.Gauge
}

func newBacklogMetrics(registry *metric.MetricsRegistry, prefix string) (*backlogMetrics, error) {
	m := &backlogMetrics{
		pushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "semstreams",
			Subsystem:   "aggsolver",
			Name:        "backlog_pushes_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of samples pushed onto the solver backlog",
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "semstreams",
			Subsystem:   "aggsolver",
			Name:        "backlog_drops_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of samples dropped because the solver backlog was full",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "semstreams",
			Subsystem:   "aggsolver",
			Name:        "backlog_size",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of samples queued in the solver backlog",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "semstreams",
			Subsystem:   "aggsolver",
			Name:        "backlog_utilization",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Solver backlog occupancy as a fraction of capacity (0.0 to 1.0)",
		}),
	}

	if err := registry.RegisterCounter(prefix, "backlog_pushes", m.pushes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "backlog_drops", m.drops); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "backlog_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "backlog_utilization", m.utilization); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *backlogMetrics) recordPush(size, capacity int) {
	m.pushes.Inc()
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}

func (m *backlogMetrics) recordDrop() {
	m.drops.Inc()
}

func (m *backlogMetrics) recordDrain(size, capacity int) {
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}
