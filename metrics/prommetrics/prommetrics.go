// Package prommetrics reports cache and admin events to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/admin"
)

var defaultBuckets = []float64{
	.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

// CacheMetrics implements namedcache.Metrics.
type CacheMetrics struct {
	hits             *prometheus.CounterVec
	misses           *prometheus.CounterVec
	populateDuration *prometheus.HistogramVec
	populateErrors   *prometheus.CounterVec
	clears           *prometheus.CounterVec
}

var _ namedcache.Metrics = (*CacheMetrics)(nil)

// NewCacheMetrics creates the cache collectors and registers them to reg.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "namedcache_hits_total",
			Help: "Total number of lookups that found the key",
		}, []string{"cache"}),

		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "namedcache_misses_total",
			Help: "Total number of lookups that did not find the key",
		}, []string{"cache"}),

		populateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "namedcache_populate_duration_seconds",
			Help:    "Producer latency of get-or-populate calls in seconds",
			Buckets: defaultBuckets,
		}, []string{"cache"}),

		populateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "namedcache_populate_errors_total",
			Help: "Total number of producers that failed",
		}, []string{"cache"}),

		clears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "namedcache_clears_total",
			Help: "Total number of clears",
		}, []string{"cache", "scope"}),
	}

	reg.MustRegister(
		m.hits,
		m.misses,
		m.populateDuration,
		m.populateErrors,
		m.clears,
	)

	return m
}

func (m *CacheMetrics) Hit(cacheName string) {
	m.hits.WithLabelValues(cacheName).Inc()
}

func (m *CacheMetrics) Miss(cacheName string) {
	m.misses.WithLabelValues(cacheName).Inc()
}

func (m *CacheMetrics) Populated(cacheName string, elapsed time.Duration, err error) {
	m.populateDuration.WithLabelValues(cacheName).Observe(elapsed.Seconds())
	if err != nil {
		m.populateErrors.WithLabelValues(cacheName).Inc()
	}
}

func (m *CacheMetrics) Cleared(cacheName string, all bool) {
	scope := "item"
	if all {
		scope = "all"
	}
	m.clears.WithLabelValues(cacheName, scope).Inc()
}

// AdminMetrics implements admin.Metrics.
type AdminMetrics struct {
	operations *prometheus.CounterVec
}

var _ admin.Metrics = (*AdminMetrics)(nil)

// NewAdminMetrics creates the admin collectors and registers them to reg.
func NewAdminMetrics(reg prometheus.Registerer) *AdminMetrics {
	m := &AdminMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "namedcache_admin_operations_total",
			Help: "Total number of administrative operations",
		}, []string{"op", "cache", "result"}),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *AdminMetrics) Operation(op, cacheName string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, cacheName, result).Inc()
}
