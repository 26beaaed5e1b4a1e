package cartcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks cache hits by view (count, qty, total, line).
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_cache_hits_total",
			Help: "Total number of cart aggregate cache hits",
		},
		[]string{"view"},
	)

	// cacheMisses tracks cache misses by view.
	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_cache_misses_total",
			Help: "Total number of cart aggregate cache misses",
		},
		[]string{"view"},
	)

	// cacheErrors tracks cache store operation errors.
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_cache_errors_total",
			Help: "Total number of cart cache store errors",
		},
		[]string{"operation"}, // "get", "set", "invalidate"
	)

	// invalidations tracks explicit per-user evictions.
	invalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_cache_invalidations_total",
			Help: "Total number of explicit cart cache invalidations",
		},
	)
)
