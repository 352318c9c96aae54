// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the council service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// DebateBuckets defines histogram buckets suited for multi-stage LLM
// pipelines: a single stage takes seconds, a full debate can take minutes.
var DebateBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}

var (
	// SessionsTotal counts debate sessions by profile and outcome.
	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "council_sessions_total",
			Help: "Debate sessions",
		},
		[]string{"profile", "status"},
	)

	// SessionDuration records full-session duration in seconds by profile.
	SessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "council_session_duration_seconds",
			Help:    "Session duration",
			Buckets: DebateBuckets,
		},
		[]string{"profile"},
	)

	// StageDuration records per-stage duration in seconds by role and backend.
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "council_stage_duration_seconds",
			Help:    "Stage duration",
			Buckets: DebateBuckets,
		},
		[]string{"role", "provider"},
	)

	// InflightSessions tracks the number of debate sessions in progress.
	InflightSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "council_inflight_sessions",
			Help: "Sessions in progress",
		},
	)

	// ProviderRequestsTotal counts calls sent to backend LLM providers.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "council_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"provider", "status"},
	)

	// ProviderRetriesTotal counts backoff retries per provider.
	ProviderRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "council_provider_retries_total",
			Help: "Provider retries",
		},
		[]string{"provider"},
	)

	// RequestsTotal counts HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "council_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "council_request_duration_seconds",
			Help:    "Request duration",
			Buckets: DebateBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		SessionsTotal,
		SessionDuration,
		StageDuration,
		InflightSessions,
		ProviderRequestsTotal,
		ProviderRetriesTotal,
		RequestsTotal,
		RequestDuration,
	)
}
