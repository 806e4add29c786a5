package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus descriptors for the editor. It implements
// telemetry.Metrics. Each instance owns its registry so repeated
// construction (tests, restarts) never trips duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	sessionsActive     prometheus.Gauge
	sessionsOpened     prometheus.Counter
	sessionsClosed     *prometheus.CounterVec
	modifiersApplied   prometheus.Counter
	modifiersRejected  *prometheus.CounterVec
	validationFailures prometheus.Counter
	configReloads      *prometheus.CounterVec
}

// NewMetrics creates and registers the editor metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "itemforge_sessions_active",
			Help: "Number of edit sessions currently open.",
		}),
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itemforge_sessions_opened_total",
			Help: "Edit sessions opened since start.",
		}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itemforge_sessions_closed_total",
			Help: "Edit sessions closed since start, by reason.",
		}, []string{"reason"}),
		modifiersApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itemforge_modifiers_applied_total",
			Help: "Successful modifier writes since start.",
		}),
		modifiersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itemforge_modifiers_rejected_total",
			Help: "Refused modifier actions since start, by reason.",
		}, []string{"reason"}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itemforge_validation_failures_total",
			Help: "Sessions closed because the backing slot changed.",
		}),
		configReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itemforge_config_reloads_total",
			Help: "Configuration reload attempts, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.sessionsActive,
		m.sessionsOpened,
		m.sessionsClosed,
		m.modifiersApplied,
		m.modifiersRejected,
		m.validationFailures,
		m.configReloads,
	)
	return m
}

func (m *Metrics) SessionOpened() {
	m.sessionsOpened.Inc()
	m.sessionsActive.Inc()
}

func (m *Metrics) SessionClosed(reason string) {
	m.sessionsClosed.WithLabelValues(reason).Inc()
	m.sessionsActive.Dec()
}

func (m *Metrics) ModifierApplied() {
	m.modifiersApplied.Inc()
}

func (m *Metrics) ModifierRejected(reason string) {
	m.modifiersRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ValidationFailure() {
	m.validationFailures.Inc()
}

func (m *Metrics) ConfigReload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.configReloads.WithLabelValues(result).Inc()
}

// Handler serves the metrics registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
