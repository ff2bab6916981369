// Package metrics holds the Prometheus collectors for the pairing service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GraphQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavorgraph_graph_query_duration_seconds",
			Help:    "Duration of graph queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	GraphQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorgraph_graph_query_errors_total",
			Help: "Total number of failed graph queries",
		},
		[]string{"operation"},
	)

	PairingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flavorgraph_pairings_created_total",
			Help: "Pairings created",
		},
	)

	PairingsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flavorgraph_pairings_skipped_total",
			Help: "AddPairing calls that found the pairing already present",
		},
	)

	IngredientsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flavorgraph_ingredients_created_total",
			Help: "Ingredients created while adding pairings",
		},
	)

	FlavorTreeNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flavorgraph_flavor_tree_nodes",
			Help:    "Number of nodes in built flavor trees",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	RecencyEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flavorgraph_recency_evictions_total",
			Help: "Entries evicted from the latest pairings window",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flavorgraph_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavorgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveQuery records the duration and outcome of one graph query.
func ObserveQuery(operation string, start time.Time, err error) {
	GraphQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		GraphQueryErrors.WithLabelValues(operation).Inc()
	}
}
