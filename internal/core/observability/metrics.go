package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	describeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcs_describe_total",
			Help: "DescribeCoverage documents by outcome.",
		},
		[]string{"outcome"},
	)

	describeDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wcs_describe_duration_seconds",
			Help:    "Time spent encoding a DescribeCoverage document.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	coveragesDescribed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wcs_coverages_described_total",
			Help: "Coverage descriptions written into successful documents.",
		},
	)

	documentBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wcs_document_bytes",
			Help:    "Size of encoded DescribeCoverage documents.",
			Buckets: prometheus.ExponentialBuckets(512, 2, 12),
		},
	)

	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Document cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Redis operations by result.",
		},
		[]string{"op", "result"},
	)

	redisOpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Latency of redis operations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"op"},
	)

	kafkaConsumerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_errors_total",
			Help: "Invalidation consumer errors by kind.",
		},
		[]string{"kind"},
	)

	invalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidations_total",
			Help: "Catalog change events handled, by op and result.",
		},
		[]string{"op", "result"},
	)

	invalidatedKeys = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invalidated_keys_total",
			Help: "Cached documents evicted by invalidation events.",
		},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wcs_describe_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal, httpRequestDurationSeconds,
		describeTotal, describeDurationSeconds, coveragesDescribed, documentBytes,
		cacheResults, cacheOps, redisOpDurationSeconds,
		kafkaConsumerErrors, invalidations, invalidatedKeys,
		buildInfo,
	}
}

// Init registers the service collectors on reg. Observations made before or
// without Init are kept in memory and never exported.
func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		return
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			panic(err)
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// ObserveDescribe records one encode attempt. coverages and size only count
// on success.
func ObserveDescribe(err error, durationSeconds float64, coverages, size int) {
	describeDurationSeconds.Observe(durationSeconds)
	if err != nil {
		describeTotal.WithLabelValues("error").Inc()
		return
	}
	describeTotal.WithLabelValues("ok").Inc()
	coveragesDescribed.Add(float64(coverages))
	documentBytes.Observe(float64(size))
}

func IncCacheHit()   { cacheResults.WithLabelValues("hit").Inc() }
func IncCacheMiss()  { cacheResults.WithLabelValues("miss").Inc() }
func IncCacheError() { cacheResults.WithLabelValues("error").Inc() }

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	cacheOps.WithLabelValues(op, result).Inc()
	redisOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func IncKafkaError(kind string) { kafkaConsumerErrors.WithLabelValues(kind).Inc() }

func ObserveInvalidation(op, result string, keys int) {
	invalidations.WithLabelValues(op, result).Inc()
	if keys > 0 {
		invalidatedKeys.Add(float64(keys))
	}
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
