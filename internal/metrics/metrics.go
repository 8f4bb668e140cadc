package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecolearn",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"status", "method", "route"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ecolearn",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ChallengeEvents counts challenge lifecycle transitions by event type
	ChallengeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecolearn",
			Name:      "challenge_events_total",
			Help:      "Challenge lifecycle transitions",
		},
		[]string{"type"},
	)

	// RewardCredits counts reward credit attempts by result
	RewardCredits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecolearn",
			Name:      "reward_credits_total",
			Help:      "Challenge reward credit attempts",
		},
		[]string{"result"},
	)

	// QuestionCacheHits counts question catalog cache hits
	QuestionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecolearn",
			Name:      "question_cache_hits_total",
			Help:      "Total number of question catalog cache hits",
		},
	)

	// QuestionCacheMisses counts question catalog cache misses
	QuestionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecolearn",
			Name:      "question_cache_misses_total",
			Help:      "Total number of question catalog cache misses",
		},
	)

	// StoreOperationDuration measures persistence operation duration
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ecolearn",
			Name:      "store_operation_duration_seconds",
			Help:      "Persistence operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)
)

// ObserveStore records the duration of a persistence operation.
func ObserveStore(backend, operation string, start time.Time) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}
