package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry crea el registry propio con los collectors de runtime y proceso.
// Solo la primera llamada inicializa.
func InitRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
	return registry
}

// Metrics contadores de negocio. Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	auditEvents          *prometheus.CounterVec
	auditPersistFailures prometheus.Counter
	accessDenied         *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	httpInFlight         prometheus.Gauge
}

// New registra las métricas en reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		auditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_audit_events_total",
			Help: "Eventos de auditoría emitidos.",
		}, []string{"event", "level"}),
		auditPersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "servicedesk_audit_persist_failures_total",
			Help: "Eventos de auditoría que no pudieron persistirse.",
		}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_access_denied_total",
			Help: "Decisiones de autorización denegadas por permiso.",
		}, []string{"permission"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_http_requests_total",
			Help: "Solicitudes HTTP procesadas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "servicedesk_http_request_duration_seconds",
			Help:    "Duración de las solicitudes HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "servicedesk_http_requests_in_flight",
			Help: "Solicitudes HTTP en curso.",
		}),
	}
	reg.MustRegister(m.auditEvents, m.auditPersistFailures, m.accessDenied, m.httpRequests, m.httpDuration, m.httpInFlight)
	return m
}

// ObserveAuditEvent cuenta un evento emitido al stream de auditoría.
func (m *Metrics) ObserveAuditEvent(event, level string) {
	if m == nil {
		return
	}
	m.auditEvents.WithLabelValues(event, level).Inc()
}

// ObserveAuditPersistFailure cuenta un fallo de persistencia (el error nunca llega al llamador).
func (m *Metrics) ObserveAuditPersistFailure() {
	if m == nil {
		return
	}
	m.auditPersistFailures.Inc()
}

// ObserveAccessDenied cuenta una denegación por permiso.
func (m *Metrics) ObserveAccessDenied(permission string) {
	if m == nil {
		return
	}
	m.accessDenied.WithLabelValues(permission).Inc()
}
