// Package metrics exposes authentication counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ethergyx/backend/internal/application/adapter"
)

const namespace = "ethergyx"

// AuthMetrics implements adapter.AuthMetrics with Prometheus counters.
type AuthMetrics struct {
	registry      *prometheus.Registry
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	emails        *prometheus.CounterVec
}

// NewAuthMetrics creates the counters on a dedicated registry, together with
// the Go runtime and process collectors.
func NewAuthMetrics() *AuthMetrics {
	registry := prometheus.NewRegistry()

	m := &AuthMetrics{
		registry: registry,
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Account registration attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "deliveries_total",
			Help:      "Transactional email delivery attempts by template and outcome.",
		}, []string{"template", "outcome"}),
	}

	registry.MustRegister(
		m.registrations,
		m.logins,
		m.emails,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRegistration counts a registration attempt.
func (m *AuthMetrics) ObserveRegistration(outcome string) {
	m.registrations.WithLabelValues(outcome).Inc()
}

// ObserveLogin counts a login attempt.
func (m *AuthMetrics) ObserveLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// ObserveEmail counts an email delivery attempt.
func (m *AuthMetrics) ObserveEmail(template, outcome string) {
	m.emails.WithLabelValues(template, outcome).Inc()
}

// Handler returns the HTTP handler serving the registry in the exposition format.
func (m *AuthMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ adapter.AuthMetrics = (*AuthMetrics)(nil)
