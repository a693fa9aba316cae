// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusUnknown = "unknown_argument"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surprise_commands_total",
			Help: "Total number of slash command invocations by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	CommandsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surprise_commands_rejected_total",
			Help: "Total number of invocations rejected before dispatch",
		},
		[]string{"reason"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surprise_provider_duration_seconds",
			Help:    "Duration of provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surprise_provider_errors_total",
			Help: "Total number of provider failures by error code",
		},
		[]string{"provider", "error_code"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surprise_cache_lookups_total",
			Help: "Provider cache lookups by result (hit, miss, error)",
		},
		[]string{"provider", "result"},
	)

	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "surprise_requests_in_flight",
			Help: "Number of command requests currently being served",
		},
	)
)
