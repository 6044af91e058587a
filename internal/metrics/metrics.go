package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terminal-bench/reliefops/internal/anomaly"
)

// Metrics holds the service collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	sosIngested  *prometheus.CounterVec
	sosRejected  *prometheus.CounterVec
	anomalies    *prometheus.CounterVec
	cacheResults *prometheus.CounterVec
	exports      *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		sosIngested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sos_ingested_total",
				Help: "SOS reports accepted, by priority and region",
			},
			[]string{"priority", "region"},
		),
		sosRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sos_rejected_total",
				Help: "SOS reports rejected by validation, by field",
			},
			[]string{"field"},
		),
		anomalies: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "data_anomalies_total",
				Help: "Recoverable data-quality anomalies, by kind and entity",
			},
			[]string{"kind", "entity"},
		),
		cacheResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_requests_total",
				Help: "Dashboard cache lookups by result",
			},
			[]string{"result"},
		),
		exports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_exports_total",
				Help: "Snapshot exports by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) SOSIngested(priority int, region string) {
	m.sosIngested.WithLabelValues(strconv.Itoa(priority), region).Inc()
}

func (m *Metrics) SOSRejected(field string) {
	m.sosRejected.WithLabelValues(field).Inc()
}

func (m *Metrics) CacheHit()  { m.cacheResults.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.cacheResults.WithLabelValues("miss").Inc() }

func (m *Metrics) ExportSucceeded() { m.exports.WithLabelValues("success").Inc() }
func (m *Metrics) ExportFailed()    { m.exports.WithLabelValues("failure").Inc() }

// Record counts an anomaly, making Metrics an anomaly.Recorder.
func (m *Metrics) Record(a anomaly.Anomaly) {
	m.anomalies.WithLabelValues(string(a.Kind), a.Entity).Inc()
}
