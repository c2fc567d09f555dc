// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "human1_queries_total",
			Help: "Total number of natural-language queries by response format and status",
		},
		[]string{"format", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "human1_query_duration_seconds",
			Help:    "Duration of query translation and execution in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"format"},
	)

	OracleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "human1_oracle_requests_total",
			Help: "Total number of LLM requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	SQLCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "human1_sql_cache_total",
			Help: "Generated SQL cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "human1_http_requests_total",
			Help: "HTTP requests served by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HistoryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "human1_history_entries",
			Help: "Number of entries in the in-memory query history",
		},
	)
)
