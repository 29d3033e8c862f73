package warehouse

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcomeSuccess labels successful queries; failures are labeled with
// their error kind.
const outcomeSuccess = "success"

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_queries_total",
			Help: "Count of warehouse queries by dataset and outcome.",
		},
		[]string{"dataset", "outcome"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warehouse_query_duration_seconds",
			Help:    "Wall-clock duration of warehouse queries by dataset.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dataset"},
	)

	queriesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warehouse_queries_in_flight",
			Help: "Number of warehouse queries currently executing.",
		},
	)
)
