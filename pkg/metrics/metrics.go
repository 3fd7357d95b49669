// Package metrics provides Prometheus metrics for the Strata read buffer:
// query counts and latencies, chunk pruning effectiveness, and resident data
// size. Metrics register themselves on the default registry; the HTTP layer
// exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Queries counts executed queries by operation and outcome status.
	//
	// Example:
	//	metrics.Queries.WithLabelValues("select", "ok").Inc()
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_queries_total",
			Help: "Total number of queries executed",
		},
		[]string{"operation", "status"},
	)

	// QueryDuration tracks the distribution of query execution times.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "strata_query_duration_seconds",
			Help: "Query execution time in seconds",
			Buckets: []float64{
				1e-6, // 1μs - statistics-only pruning
				1e-5, // 10μs - small row group scans
				1e-4, // 100μs - typical single-chunk queries
				1e-3, // 1ms - multi-chunk queries
				1e-2, // 10ms - large aggregations
				1e-1, // 100ms - full-buffer scans
				1,    // 1s
			},
		},
		[]string{"operation"},
	)

	// ChunksScanned counts chunks whose tables were actually inspected.
	ChunksScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "strata_chunks_scanned_total",
			Help: "Chunks inspected by queries after pruning",
		},
	)

	// ChunksPruned counts chunks skipped by time-range pruning.
	ChunksPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "strata_chunks_pruned_total",
			Help: "Chunks skipped by time-range pruning",
		},
	)

	// ResidentBytes tracks the total resident size of the store.
	ResidentBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strata_resident_bytes",
			Help: "Total bytes resident in the read buffer",
		},
	)

	// Databases tracks the number of registered databases.
	Databases = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strata_databases",
			Help: "Number of registered databases",
		},
	)
)
