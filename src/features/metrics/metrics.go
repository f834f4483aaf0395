package metrics

import (
	"github.com/contre95/dispatch/src/features/dispatching"
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics exposes dispatch results as Prometheus metrics. It
// implements dispatching.Observer.
type DispatchMetrics struct {
	registry *prometheus.Registry
	files    *prometheus.CounterVec
	bytes    prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewDispatchMetrics creates the collectors on a private registry.
func NewDispatchMetrics() *DispatchMetrics {
	m := &DispatchMetrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "files_total",
			Help:      "Dispatched entries by outcome and reason.",
		}, []string{"outcome", "reason"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "bytes_total",
			Help:      "Bytes placed in the destination tree.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "transfer_seconds",
			Help:      "Time spent dispatching a media file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.files, m.bytes, m.duration)
	return m
}

// Registry returns the registry holding the dispatch collectors.
func (m *DispatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe implements dispatching.Observer.
func (m *DispatchMetrics) Observe(r dispatching.Result) {
	outcome := r.Outcome.String()
	m.files.WithLabelValues(outcome, r.Reason).Inc()
	if r.Outcome == dispatching.Transferred {
		m.bytes.Add(float64(r.Bytes))
	}
	// Only media files that got past the filter are worth timing.
	if r.Stage != dispatching.StageDiscovered {
		m.duration.WithLabelValues(outcome).Observe(r.Duration.Seconds())
	}
}
