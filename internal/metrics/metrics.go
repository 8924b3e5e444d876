// Package metrics exposes Prometheus counters for authentication, password
// reset and notification events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics contains the custom Prometheus metrics for DevCode.
type Metrics struct {
	registry *prometheus.Registry

	AuthEvents     *prometheus.CounterVec
	PasswordResets *prometheus.CounterVec
	Notifications  *prometheus.CounterVec
}

// New creates a registry with Go and process collectors plus the DevCode metrics.
func New() *Metrics {
	// Create a new registry to avoid polluting the global one
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devcode_auth_events_total",
				Help: "Total number of authentication events by event and result",
			},
			[]string{"event", "result"},
		),
		PasswordResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devcode_password_resets_total",
				Help: "Total number of password reset steps by stage and result",
			},
			[]string{"stage", "result"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devcode_notifications_total",
				Help: "Total number of outbound notifications by kind and result",
			},
			[]string{"kind", "result"},
		),
	}

	registry.MustRegister(m.AuthEvents)
	registry.MustRegister(m.PasswordResets)
	registry.MustRegister(m.Notifications)

	return m
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// RecordAuth counts a register, login, logout or authenticate outcome.
// Safe to call on a nil receiver.
func (m *Metrics) RecordAuth(event string, err error) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, result(err)).Inc()
}

// RecordReset counts a request or confirm step of the reset workflow.
func (m *Metrics) RecordReset(stage string, err error) {
	if m == nil {
		return
	}
	m.PasswordResets.WithLabelValues(stage, result(err)).Inc()
}

// RecordNotification counts a delivered or failed e-mail.
func (m *Metrics) RecordNotification(kind string, err error) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind, result(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
