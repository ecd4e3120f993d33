package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_query_duration_seconds",
		Help:    "Duration of dashboard aggregation queries by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	QueryTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_query_timeouts_total",
		Help: "Number of dashboard queries that exceeded their time bound.",
	}, []string{"operation"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_hits_total",
		Help: "Number of dashboard cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_misses_total",
		Help: "Number of dashboard cache misses, including degraded cache reads.",
	})

	CacheErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_errors_total",
		Help: "Number of cache operations that failed and degraded to a miss.",
	})
)
