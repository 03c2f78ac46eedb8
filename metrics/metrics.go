package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "defect_tracker"

// Metrics holds the service's prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	defectsCreated   prometheus.Counter
	defectUpdates    *prometheus.CounterVec
	capaOperations   *prometheus.CounterVec
	auditEntries     *prometheus.CounterVec
	authzDenied      *prometheus.CounterVec
	requestDurations *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		defectsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defects_created_total",
			Help:      "Total defect logs created",
		}),

		defectUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defect_updates_total",
			Help:      "Total defect disposition updates by resulting status",
		}, []string{"status"}),

		capaOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capa_operations_total",
			Help:      "Total CAPA mutations by action",
		}, []string{"action"}),

		auditEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "Total audit entries committed by table and action",
		}, []string{"table", "action"}),

		authzDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denied_total",
			Help:      "Total requests denied by the access policy by operation",
		}, []string{"operation"}),

		requestDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"method", "route", "code"}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) DefectCreated() {
	if m == nil {
		return
	}
	m.defectsCreated.Inc()
}

func (m *Metrics) DefectUpdated(status string) {
	if m == nil {
		return
	}
	m.defectUpdates.WithLabelValues(status).Inc()
}

func (m *Metrics) CapaOperation(action string) {
	if m == nil {
		return
	}
	m.capaOperations.WithLabelValues(action).Inc()
}

func (m *Metrics) AuditEntry(table, action string) {
	if m == nil {
		return
	}
	m.auditEntries.WithLabelValues(table, action).Inc()
}

func (m *Metrics) AuthorizationDenied(operation string) {
	if m == nil {
		return
	}
	m.authzDenied.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDurations.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
