package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	PermissionDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_decisions_total",
			Help: "Permission checks by module, action and result.",
		},
		[]string{"module", "action", "result"},
	)

	ApprovalStepsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_steps_completed_total",
			Help: "Approval steps moved out of pending, by entity and resulting step status.",
		},
		[]string{"entity", "status"},
	)

	AuditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Audit entries that could not be persisted.",
	})

	NotificationDispatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_dispatch_failures_total",
		Help: "Notifications that could not be stored or queued.",
	})
)

var registerOnce sync.Once

// Init registers the collectors on the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPInFlight,
			HTTPRequestsTotal,
			HTTPRequestDuration,
			PermissionDecisions,
			ApprovalStepsCompleted,
			AuditWriteFailures,
			NotificationDispatchFailures,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
