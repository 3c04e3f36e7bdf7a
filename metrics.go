package scoreline

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the client's request
// lifecycle and reliability layers. It is safe for concurrent use. All
// record methods are nil-safe so call sites need no guards.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal  *prometheus.CounterVec
	degradedTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   prometheus.Gauge

	dedupHits *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer, which keeps tests isolated.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreline_requests_total",
				Help: "Total number of leaderboard operations by outcome",
			},
			[]string{"operation", "status"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoreline_request_duration_seconds",
				Help:    "Duration of leaderboard operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scoreline_requests_in_flight",
				Help: "Number of leaderboard operations currently in flight",
			},
			[]string{"operation"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreline_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"operation", "attempt"},
		),
		degradedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreline_degraded_total",
				Help: "Reads served from the fallback dataset",
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreline_errors_total",
				Help: "Classified errors surfaced to callers",
			},
			[]string{"operation", "kind"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreline_cache_hits_total",
				Help: "Cache hits by operation",
			},
			[]string{"operation"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreline_cache_misses_total",
				Help: "Cache misses by operation",
			},
			[]string{"operation"},
		),
		cacheSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "scoreline_cache_entries",
				Help: "Entries currently in the response cache",
			},
		),
		dedupHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreline_deduplication_hits_total",
				Help: "Calls coalesced onto an identical in-flight request",
			},
			[]string{"operation"},
		),
	}
}

func (mc *MetricsCollector) recordStart(operation string) {
	if mc == nil {
		return
	}
	mc.requestsInFlight.WithLabelValues(operation).Inc()
}

func (mc *MetricsCollector) recordEnd(operation, status string, duration time.Duration) {
	if mc == nil {
		return
	}
	mc.requestsInFlight.WithLabelValues(operation).Dec()
	mc.requestsTotal.WithLabelValues(operation, status).Inc()
	mc.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (mc *MetricsCollector) recordRetry(operation string, attempt int) {
	if mc == nil {
		return
	}
	mc.retriesTotal.WithLabelValues(operation, strconv.Itoa(attempt)).Inc()
}

func (mc *MetricsCollector) recordDegraded(operation string) {
	if mc == nil {
		return
	}
	mc.degradedTotal.WithLabelValues(operation).Inc()
}

func (mc *MetricsCollector) recordError(operation string, kind Kind) {
	if mc == nil {
		return
	}
	mc.errorsTotal.WithLabelValues(operation, string(kind)).Inc()
}

func (mc *MetricsCollector) recordCacheHit(operation string) {
	if mc == nil {
		return
	}
	mc.cacheHits.WithLabelValues(operation).Inc()
}

func (mc *MetricsCollector) recordCacheMiss(operation string) {
	if mc == nil {
		return
	}
	mc.cacheMisses.WithLabelValues(operation).Inc()
}

func (mc *MetricsCollector) recordCacheSize(size int) {
	if mc == nil {
		return
	}
	mc.cacheSize.Set(float64(size))
}

func (mc *MetricsCollector) recordDedupHit(operation string) {
	if mc == nil {
		return
	}
	mc.dedupHits.WithLabelValues(operation).Inc()
}
