package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics methods are safe on a nil receiver so components can run without instrumentation.
type Metrics struct {
	operations     *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	retries        *prometheus.CounterVec
	sweepUnits     *prometheus.CounterVec
	events         *prometheus.CounterVec
	breakerRejects prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circulation_operations_total",
				Help: "Circulation operations by outcome kind",
			},
			[]string{"operation", "kind"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "circulation_operation_duration_seconds",
				Help:    "Duration of circulation operations including lock wait and retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circulation_stale_retries_total",
				Help: "Transactions retried after a stale item state",
			},
			[]string{"operation"},
		),
		sweepUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circulation_sweep_units_total",
				Help: "Loans and reservations visited by sweeps",
			},
			[]string{"sweep", "outcome"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circulation_events_total",
				Help: "Notifications handed to the dispatcher",
			},
			[]string{"type", "result"},
		),
		breakerRejects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "circulation_notify_breaker_rejects_total",
				Help: "Notifications dropped while the publisher circuit breaker was open",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.latency, m.retries, m.sweepUnits, m.events, m.breakerRejects)
	}
	return m
}

func (m *Metrics) ObserveOperation(op, kind string, started time.Time) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, kind).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Retry(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}

func (m *Metrics) SweepUnit(sweep, outcome string) {
	if m == nil {
		return
	}
	m.sweepUnits.WithLabelValues(sweep, outcome).Inc()
}

func (m *Metrics) Event(eventType, result string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) BreakerReject() {
	if m == nil {
		return
	}
	m.breakerRejects.Inc()
}
