package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Storage metrics
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageErrorsTotal      *prometheus.CounterVec

	// Compile metrics: building a FeatureSetDefaults table from a schema
	CompileTotal       *prometheus.CounterVec
	CompileDuration     *prometheus.HistogramVec
	CompileErrorsTotal  *prometheus.CounterVec

	// Resolve metrics: resolving a feature set for one edition
	ResolveTotal      *prometheus.CounterVec
	ResolveDuration    *prometheus.HistogramVec
	ResolveErrorsTotal *prometheus.CounterVec

	// Merge metrics: layering overrides onto a resolved feature set
	MergeTotal      *prometheus.CounterVec
	MergeDuration    *prometheus.HistogramVec
	MergeErrorsTotal *prometheus.CounterVec

	// In-process LRU cache metrics (pkg/storage.FileSystemStore)
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec
	CacheSizeEntries    *prometheus.GaugeVec

	// Postgres connection pool metrics (pkg/storage/postgres.Store)
	DBConnectionsActive       prometheus.Gauge
	DBConnectionsIdle         prometheus.Gauge
	DBConnectionsWaitCount    prometheus.Gauge
	DBConnectionsWaitDuration prometheus.Gauge

	// Schema registry metrics
	SchemasRegisteredTotal prometheus.Gauge
	APITokensActive        prometheus.Gauge

	// PanicsRecoveredTotal counts panics caught by RecoverPanicWithMetrics,
	// labeled by the handler/goroutine context they occurred in.
	PanicsRecoveredTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featureresolver_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featureresolver_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featureresolver_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_storage_operations_total",
				Help: "Total number of storage operations",
			},
			[]string{"operation", "backend", "status"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featureresolver_storage_operation_duration_seconds",
				Help:    "Storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_storage_errors_total",
				Help: "Total number of storage errors",
			},
			[]string{"operation", "backend", "error_type"},
		),

		CompileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_compile_total",
				Help: "Total number of FeatureSetDefaults compilations",
			},
			[]string{"status"},
		),
		CompileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featureresolver_compile_duration_seconds",
				Help:    "FeatureSetDefaults compilation duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 5, 10, 30},
			},
			[]string{"schema"},
		),
		CompileErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_compile_errors_total",
				Help: "Total number of compilation errors",
			},
			[]string{"error_type"},
		),

		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_resolve_total",
				Help: "Total number of feature resolutions",
			},
			[]string{"status"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featureresolver_resolve_duration_seconds",
				Help:    "Feature resolution duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"schema"},
		),
		ResolveErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_resolve_errors_total",
				Help: "Total number of resolution errors",
			},
			[]string{"error_type"},
		),

		MergeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_merge_total",
				Help: "Total number of feature set merges",
			},
			[]string{"status"},
		),
		MergeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "featureresolver_merge_duration_seconds",
				Help:    "Feature set merge duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"schema"},
		),
		MergeErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_merge_errors_total",
				Help: "Total number of merge errors",
			},
			[]string{"error_type"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_cache_hits_total",
				Help: "Total number of in-process cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_cache_misses_total",
				Help: "Total number of in-process cache misses",
			},
			[]string{"cache_type"},
		),
		CacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_cache_evictions_total",
				Help: "Total number of in-process cache evictions",
			},
			[]string{"cache_type", "reason"},
		),
		CacheSizeEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "featureresolver_cache_size_entries",
				Help: "Current number of entries in the in-process cache",
			},
			[]string{"cache_type"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "featureresolver_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "featureresolver_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		DBConnectionsWaitCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "featureresolver_db_connections_wait_count",
				Help: "Total number of connections waited for",
			},
		),
		DBConnectionsWaitDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "featureresolver_db_connections_wait_duration_seconds",
				Help: "Total time spent waiting for connections",
			},
		),

		SchemasRegisteredTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "featureresolver_schemas_registered_total",
				Help: "Total number of registered feature schemas",
			},
		),
		APITokensActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "featureresolver_api_tokens_active",
				Help: "Number of active (non-revoked, non-expired) API tokens",
			},
		),

		PanicsRecoveredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "featureresolver_panics_recovered_total",
				Help: "Total number of panics recovered, by the context they occurred in",
			},
			[]string{"context"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSize,
		m.HTTPResponseSize,
		m.StorageOperationsTotal,
		m.StorageOperationDuration,
		m.StorageErrorsTotal,
		m.CompileTotal,
		m.CompileDuration,
		m.CompileErrorsTotal,
		m.ResolveTotal,
		m.ResolveDuration,
		m.ResolveErrorsTotal,
		m.MergeTotal,
		m.MergeDuration,
		m.MergeErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheEvictionsTotal,
		m.CacheSizeEntries,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.DBConnectionsWaitCount,
		m.DBConnectionsWaitDuration,
		m.SchemasRegisteredTotal,
		m.APITokensActive,
		m.PanicsRecoveredTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			if r.ContentLength > 0 {
				metrics.HTTPRequestSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(r.ContentLength))
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
