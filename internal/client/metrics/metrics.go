// Package metrics provides Prometheus instrumentation for the session store:
// state transitions, operation outcomes and credential verifications.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "worldacross_session"

// Metrics groups the session collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Transitions   *prometheus.CounterVec
	Operations    *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	Authenticated prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// status = "anonymous", "checking" or "authenticated"
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Session state transitions by target status",
		}, []string{"status"}),

		// outcome = "ok", "error", "skipped"
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Session store operations by name and outcome",
		}, []string{"op", "outcome"}),

		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Credential verifications by result",
		}, []string{"result"}),

		Authenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "authenticated",
			Help:      "1 while the session is authenticated",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Transitions, m.Operations, m.Verifications, m.Authenticated)
	}
	return m
}

func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(status).Inc()
	if status == "authenticated" {
		m.Authenticated.Set(1)
	} else if status == "anonymous" {
		m.Authenticated.Set(0)
	}
}

func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

// Verification records a codec result; an empty reason means valid.
func (m *Metrics) Verification(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "valid"
	}
	m.Verifications.WithLabelValues(reason).Inc()
}
