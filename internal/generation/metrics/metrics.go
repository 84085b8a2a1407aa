package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal tracks generation attempts by outcome.
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_generation_attempts_total",
			Help: "Total number of workout generation attempts",
		},
		[]string{"outcome"},
	)

	// FallbacksTotal tracks internal fallback substitutions.
	FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_generation_fallbacks_total",
			Help: "Total number of internal fallback substitutions",
		},
	)

	// RetriesTotal tracks caller-initiated retries.
	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_generation_retries_total",
			Help: "Total number of caller-initiated generation retries",
		},
	)

	// FailuresTotal tracks terminal failures by classified code.
	FailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_generation_failures_total",
			Help: "Total number of terminal generation failures",
		},
		[]string{"code"},
	)

	// Duration tracks end-to-end attempt latency.
	Duration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coach_generation_duration_seconds",
			Help:    "Workout generation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"origin"},
	)

	// ProviderCallsTotal tracks remote provider calls.
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_provider_calls_total",
			Help: "Total number of remote generation provider calls",
		},
		[]string{"provider", "outcome"},
	)
)
