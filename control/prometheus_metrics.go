// File: control/prometheus_metrics.go
// Author: momentics <momentics@gmail.com>
//
// ReactorMetrics exposes the reactor's own runtime counters
// (github.com/prometheus/client_golang) for scraping, independent of the
// ad-hoc MetricsRegistry used by ControlAdapter.Stats for debug dumps.

package control

import "github.com/prometheus/client_golang/prometheus"

// ReactorMetrics groups the Prometheus collectors a deployment registers
// once and the reactor updates as sessions come and go.
type ReactorMetrics struct {
	SessionsActive   prometheus.Gauge
	SessionsOpened   prometheus.Counter
	SessionsClosed   prometheus.Counter
	WorkerErrors     prometheus.Counter
	PendingQueueSize prometheus.Gauge
}

// NewReactorMetrics constructs collectors under the "ioreactor" namespace
// and registers them with reg (use prometheus.NewRegistry() for an isolated
// registry, or prometheus.DefaultRegisterer to join the global one).
func NewReactorMetrics(reg prometheus.Registerer) *ReactorMetrics {
	m := &ReactorMetrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ioreactor",
			Name:      "sessions_active",
			Help:      "Number of sessions currently registered across all workers.",
		}),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ioreactor",
			Name:      "sessions_opened_total",
			Help:      "Total sessions that completed intake registration.",
		}),
		SessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ioreactor",
			Name:      "sessions_closed_total",
			Help:      "Total sessions that reached Disconnected.",
		}),
		WorkerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ioreactor",
			Name:      "worker_errors_total",
			Help:      "Total errors recorded to any worker's audit log.",
		}),
		PendingQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ioreactor",
			Name:      "pending_queue_size",
			Help:      "Approximate size of the pending-session hand-off queue.",
		}),
	}
	reg.MustRegister(
		m.SessionsActive,
		m.SessionsOpened,
		m.SessionsClosed,
		m.WorkerErrors,
		m.PendingQueueSize,
	)
	return m
}

// The four methods below give *ReactorMetrics the method set reactor's
// MetricsSink interface expects, satisfied structurally: reactor does not
// import control (control/reactor_config.go imports reactor for
// *reactor.Config, so the reverse edge would be an import cycle), the wiring
// caller just needs both types in scope,
// e.g. reactorInstance.SetMetricsSink(controlMetrics).

// SessionOpened records a completed intake registration.
func (m *ReactorMetrics) SessionOpened() {
	m.SessionsOpened.Inc()
	m.SessionsActive.Inc()
}

// SessionClosed records a session reaching Disconnected.
func (m *ReactorMetrics) SessionClosed() {
	m.SessionsClosed.Inc()
	m.SessionsActive.Dec()
}

// WorkerError records one audit-logged error from any worker.
func (m *ReactorMetrics) WorkerError() {
	m.WorkerErrors.Inc()
}

// SetPendingQueueSize publishes the pending-session queue's approximate depth.
func (m *ReactorMetrics) SetPendingQueueSize(n int) {
	m.PendingQueueSize.Set(float64(n))
}
