// Package metrics declares the Prometheus collectors shared by the services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ticketing"

var (
	ClaimsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "intake",
		Name:      "claims_total",
		Help:      "Claim requests received by the intake, by result.",
	}, []string{"result"})

	BookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "outcomes_total",
		Help:      "Processed claims by outcome (reserved, declined, contended, failed).",
	}, []string{"outcome"})

	LockReleaseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "lock_release_failures_total",
		Help:      "Lock releases that failed or found the lock already gone.",
	})

	SyncCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "cycles_total",
		Help:      "Sync cycles by result (applied, idle, failed).",
	}, []string{"result"})

	SyncSeatsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "seats_applied_total",
		Help:      "Seat snapshots written to the projection, by how they landed.",
	}, []string{"result"})

	SyncLagSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "lag_seconds",
		Help:      "Store server time minus the persisted checkpoint after the last cycle.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "idempotent_replays_total",
		Help:      "Responses served from the idempotency cache.",
	})

	KafkaMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kafka",
		Name:      "messages_total",
		Help:      "Kafka messages by direction (produced, consumed, dead_lettered) and status (ok, error).",
	}, []string{"direction", "topic", "status"})

	KafkaDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "kafka",
		Name:      "handle_duration_seconds",
		Help:      "Time spent publishing or handling a Kafka message.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"direction", "topic"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
