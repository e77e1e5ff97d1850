package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// Events
	Participation = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_participation_total",
			Help: "Join and leave attempts by outcome",
		},
		[]string{"action", "result"}, // join|leave, ok|<error kind>
	)

	// Cotisations
	CotisationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cotisations_created_total",
			Help: "Cotisations recorded",
		},
	)
	ReceiptCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cotisation_receipt_collisions_total",
			Help: "Receipt numbers regenerated after a uniqueness violation",
		},
	)
	CotisationStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cotisation_status_changes_total",
			Help: "Cotisation status updates by new status",
		},
		[]string{"status"},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
	WorkerJobsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Background jobs that returned an error",
		},
		[]string{"job"},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors on the default registry; later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			HTTPLatency,
			RateLimited,
			Participation,
			CotisationsCreated,
			ReceiptCollisions,
			CotisationStatusChanges,
			WorkerQueueDepth,
			WorkerJobsFailed,
		)
	})
}
