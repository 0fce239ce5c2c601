// Package metrics exposes prometheus instrumentation for the acquisition,
// dispatch and activity subsystems. Collectors register on the default
// registry; whether they are served is the host's decision.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts counts acquisition strategy attempts by outcome
	// (success, soft_fail, invalid).
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solverpad",
		Subsystem: "fetch",
		Name:      "attempts_total",
		Help:      "Acquisition strategy attempts by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	// DispatchFailures counts classified dispatch failures.
	DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solverpad",
		Subsystem: "dispatch",
		Name:      "failures_total",
		Help:      "Dispatch failures by classified kind.",
	}, []string{"kind"})

	// DispatchRequests counts outbound dispatch round trips per provider.
	DispatchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solverpad",
		Subsystem: "dispatch",
		Name:      "requests_total",
		Help:      "Dispatch round trips by provider.",
	}, []string{"provider"})

	// ActivityRefreshPages counts pages fetched per solved-set refresh.
	ActivityRefreshPages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "solverpad",
		Subsystem: "activity",
		Name:      "refresh_pages_total",
		Help:      "Submission history pages fetched during refreshes.",
	})

	// ActivityRefreshDuration observes wall time of full refreshes.
	ActivityRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "solverpad",
		Subsystem: "activity",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of full solved-set refreshes.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)
