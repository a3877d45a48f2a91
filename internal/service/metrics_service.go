package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates the Prometheus instrumentation for the record
// store and the HTTP surface.
type MetricsService struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	recordCount     prometheus.Gauge
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "record_query_duration_seconds",
			Help:    "Duration of record store queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"cache"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "record_cache_hits_total",
			Help: "Total query cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "record_cache_misses_total",
			Help: "Total query cache misses",
		}),
		recordCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "records_in_collection",
			Help: "Records currently held in the in-memory collection",
		}),
	}

	registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.queryDuration,
		m.cacheHits,
		m.cacheMisses,
		m.recordCount,
	)
	return m
}

// ObserveQuery implements the store's metrics hook.
func (m *MetricsService) ObserveQuery(cacheHit bool, duration time.Duration) {
	label := "miss"
	if cacheHit {
		label = "hit"
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
	m.queryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// SetRecordCount implements the store's metrics hook.
func (m *MetricsService) SetRecordCount(count int) {
	m.recordCount.Set(float64(count))
}

// GinMiddleware records request counters and latencies.
func (m *MetricsService) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
