package instrumentation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// -----------------------------------------------------------------------------

// Metrics contains all Prometheus metrics for the telemetry engine. A nil
// *Metrics is valid and records nothing, which keeps tests free of global
// registry collisions.
type Metrics struct {
	EventsApplied  *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	AnomaliesTotal *prometheus.CounterVec
	Transitions    prometheus.Counter
	SourceMode     *prometheus.GaugeVec
}

// -----------------------------------------------------------------------------

// NewMetrics creates and registers all Prometheus metrics. Call once per
// process.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "market_eye_events_applied_total",
			Help: "Normalized events applied to engine state, by event type",
		}, []string{"type"}),

		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "market_eye_events_dropped_total",
			Help: "Events dropped before application, by reason",
		}, []string{"reason"}),

		AnomaliesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "market_eye_anomalies_total",
			Help: "Anomalies recorded in the ring, by kind",
		}, []string{"kind"}),

		Transitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "market_eye_failover_transitions_total",
			Help: "Source health state transitions",
		}),

		SourceMode: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "market_eye_source_mode",
			Help: "Active source mode (1 for the current mode, 0 otherwise)",
		}, []string{"mode"}),
	}
}

// -----------------------------------------------------------------------------

// EventApplied counts one applied event of the given type.
func (m *Metrics) EventApplied(eventType string) {
	if m == nil {
		return
	}
	m.EventsApplied.WithLabelValues(eventType).Inc()
}

// -----------------------------------------------------------------------------

// EventDropped counts one dropped event with the given reason.
func (m *Metrics) EventDropped(reason string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(reason).Inc()
}

// -----------------------------------------------------------------------------

// AnomalyRecorded counts one ring insertion for the given kind.
func (m *Metrics) AnomalyRecorded(kind string) {
	if m == nil {
		return
	}
	m.AnomaliesTotal.WithLabelValues(kind).Inc()
}

// -----------------------------------------------------------------------------

// ModeChanged counts a failover transition and flips the mode gauge.
func (m *Metrics) ModeChanged(mode string) {
	if m == nil {
		return
	}
	m.Transitions.Inc()
	for _, known := range []string{"CONNECTING", "LIVE", "DEGRADED", "SIMULATED"} {
		value := 0.0
		if known == mode {
			value = 1.0
		}
		m.SourceMode.WithLabelValues(known).Set(value)
	}
}
