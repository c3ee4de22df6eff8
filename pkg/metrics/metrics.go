// Package metrics provides Prometheus instrumentation for repgo components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for repgo components.
type Registry struct {
	// Dispatch Metrics
	DispatchRuns            *prometheus.CounterVec
	DispatchItems           *prometheus.CounterVec
	DispatchSuccesses       *prometheus.CounterVec
	DispatchFailures        *prometheus.CounterVec
	DispatchCanceled        *prometheus.CounterVec
	DispatchRetries         *prometheus.CounterVec
	DispatchAttemptDuration *prometheus.HistogramVec
	DispatchRunDuration     *prometheus.HistogramVec
	DispatchInFlight        *prometheus.GaugeVec

	// HTTP Client Metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRetries         *prometheus.CounterVec
	HTTPFailures        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Rate Limiting Metrics
	RateLimitWaits        *prometheus.CounterVec
	RateLimitWaitDuration *prometheus.HistogramVec

	// Checkpoint Metrics
	CheckpointLoads  *prometheus.CounterVec
	CheckpointSaves  *prometheus.CounterVec
	CheckpointErrors *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by repgo components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Dispatch Metrics
		DispatchRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "runs_total",
				Help:      "Total number of dispatch runs",
			},
			[]string{"dispatcher"},
		),

		DispatchItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "items_total",
				Help:      "Total number of work items dispatched",
			},
			[]string{"dispatcher"},
		),

		DispatchSuccesses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "items_succeeded_total",
				Help:      "Total number of work items that reached a successful outcome",
			},
			[]string{"dispatcher"},
		),

		DispatchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "items_failed_total",
				Help:      "Total number of work items that reached a failed outcome",
			},
			[]string{"dispatcher"},
		),

		DispatchCanceled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "items_canceled_total",
				Help:      "Total number of work items abandoned by cancellation",
			},
			[]string{"dispatcher"},
		),

		DispatchRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "retries_total",
				Help:      "Total number of retried attempts",
			},
			[]string{"dispatcher"},
		),

		DispatchAttemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "attempt_duration_seconds",
				Help:      "Time spent executing individual attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"dispatcher"},
		),

		DispatchRunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "run_duration_seconds",
				Help:      "Time spent completing whole dispatch runs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"dispatcher"},
		),

		DispatchInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "repgo",
				Subsystem: "dispatch",
				Name:      "in_flight_runs",
				Help:      "Number of dispatch runs currently executing",
			},
			[]string{"dispatcher"},
		),

		// HTTP Client Metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "httpclient",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests issued",
			},
			[]string{"client", "method"},
		),

		HTTPRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "httpclient",
				Name:      "retries_total",
				Help:      "Total number of retried HTTP attempts",
			},
			[]string{"client", "method"},
		),

		HTTPFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "httpclient",
				Name:      "failures_total",
				Help:      "Total number of HTTP requests that exhausted retries",
			},
			[]string{"client", "method"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "repgo",
				Subsystem: "httpclient",
				Name:      "request_duration_seconds",
				Help:      "Time spent on HTTP attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"client", "method"},
		),

		// Rate Limiting Metrics
		RateLimitWaits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "ratelimit",
				Name:      "waits_total",
				Help:      "Total number of rate limit waits",
			},
			[]string{"limiter_name"},
		),

		RateLimitWaitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "repgo",
				Subsystem: "ratelimit",
				Name:      "wait_duration_seconds",
				Help:      "Time spent blocked on the rate limiter",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"limiter_name"},
		),

		// Checkpoint Metrics
		CheckpointLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "checkpoint",
				Name:      "loads_total",
				Help:      "Total number of checkpoint loads",
			},
			[]string{"store"},
		),

		CheckpointSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "checkpoint",
				Name:      "saves_total",
				Help:      "Total number of checkpoint saves",
			},
			[]string{"store"},
		),

		CheckpointErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "repgo",
				Subsystem: "checkpoint",
				Name:      "errors_total",
				Help:      "Total number of checkpoint store errors",
			},
			[]string{"store"},
		),
	}
}
