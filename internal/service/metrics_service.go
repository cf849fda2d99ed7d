package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes used as metric labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	generationDuration *prometheus.HistogramVec
	generationTotal    *prometheus.CounterVec
	relaxationLevel    prometheus.Histogram
	slotsCreated       prometheus.Histogram
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Wall time of timetable generation runs",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"outcome"})

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generation_total",
		Help: "Timetable generation runs by outcome",
	}, []string{"outcome"})

	relaxationLevel := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_relaxation_level",
		Help:    "Highest relaxation level reached by successful runs (0 strict .. 4 emergency)",
		Buckets: []float64{0, 1, 2, 3, 4},
	})

	slotsCreated := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_slots_created",
		Help:    "Assignment rows written per successful run",
		Buckets: prometheus.LinearBuckets(10, 10, 8),
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHits, cacheMisses,
		dbQueryDuration,
		generationDuration, generationTotal, relaxationLevel, slotsCreated,
		goroutines,
	)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		dbQueryDuration:    dbQueryDuration,
		generationDuration: generationDuration,
		generationTotal:    generationTotal,
		relaxationLevel:    relaxationLevel,
		slotsCreated:       slotsCreated,
	}
}

// TrackQueueDepth exports depth as the backlog gauge of the named job queue.
func (m *MetricsService) TrackQueueDepth(queue string, depth func() int) {
	if m == nil || depth == nil {
		return
	}
	// A second queue under the same name keeps the first gauge.
	_ = m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "job_queue_depth",
		Help:        "Jobs buffered and not yet picked up by a worker",
		ConstLabels: prometheus.Labels{"queue": queue},
	}, func() float64 {
		return float64(depth())
	}))
}

// Registry exposes the underlying registry, mostly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveGeneration records one generation run. level and slots are only
// meaningful for successful runs and are ignored otherwise.
func (m *MetricsService) ObserveGeneration(outcome string, duration time.Duration, level, slots int) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.generationTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.relaxationLevel.Observe(float64(level))
		m.slotsCreated.Observe(float64(slots))
	}
}
