// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging, metrics
// collection, health checks, and distributed tracing integration.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("port", 8080).Info("server started")
//
// Context-aware logging:
//
//	logger.WithField("request_id", reqID).WithError(err).Error("resolve failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.HTTPRequestsTotal.WithLabelValues("POST", "/v1/resolve", "200").Inc()
//	metrics.ResolveDuration.WithLabelValues("acme.features").Observe(0.0003)
//
// Schema registry metrics:
//
//	metrics.SchemasRegisteredTotal.Set(float64(count))
//	metrics.APITokensActive.Set(float64(activeTokens))
//
// # Health Checks
//
// Configure health checker. Redis is optional: the distributed rate
// limiter is the only consumer, so its health is reported degraded
// rather than unhealthy when unreachable.
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	status := checker.Check(ctx)
//	fmt.Printf("Status: %s\n", status.Status)
//
// # OpenTelemetry
//
// Initialize tracing and shut it down through the standalone function,
// not a method on the returned providers:
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:        true,
//		ServiceName:    "feature-resolver",
//		ServiceVersion: "v1.0.0",
//		Endpoint:       "otel-collector:4317",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// NewOTelMetrics builds the metric-instrument counterpart, recorded
// alongside (or instead of) the Prometheus metrics above:
//
//	otelMetrics, err := observability.NewOTelMetrics()
//	otelMetrics.RecordCacheHit(ctx, "compiled_table")
//
// # Graceful Shutdown
//
// ShutdownManager coordinates SIGINT/SIGTERM handling, the primary
// http.Server's shutdown, and any number of extra shutdown funcs
// (a second listener, OTel exporters):
//
//	shutdown := observability.NewShutdownManager(logger, srv, 30*time.Second)
//	shutdown.RegisterNamedShutdownFunc("health/metrics server", healthSrv.Shutdown)
//	if err := shutdown.WaitForShutdown(); err != nil {
//		logger.WithError(err).Error("shutdown did not complete cleanly")
//	}
//
// RecoverPanic, RecoverPanicWithCallback, and RecoverPanicWithMetrics turn a
// recovered panic into a logged error instead of a crashed process; the
// metrics variant also increments PanicsRecoveredTotal, which is what
// pkg/api's top-level HTTP middleware uses so a panicking handler shows up
// as an alertable counter, not just a log line.
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
//   - pkg/async: its own panic-recovering goroutine helpers, used for
//     background work the way RecoverPanic is used in the HTTP path
package observability
