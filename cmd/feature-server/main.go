package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/featureresolver/pkg/api"
	"github.com/platinummonkey/featureresolver/pkg/async"
	"github.com/platinummonkey/featureresolver/pkg/auth"
	"github.com/platinummonkey/featureresolver/pkg/config"
	"github.com/platinummonkey/featureresolver/pkg/middleware"
	"github.com/platinummonkey/featureresolver/pkg/observability"
	"github.com/platinummonkey/featureresolver/pkg/storage"
	"github.com/platinummonkey/featureresolver/pkg/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting feature resolver")

	store, closeStore, err := newStore(cfg.Storage)
	if err != nil {
		logger.WithError(err).Error("failed to initialize storage")
		os.Exit(1)
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	var otelShutdown func(context.Context) error
	var otelMetrics *observability.OTelMetrics
	if cfg.Observability.OTelEnabled {
		ctx := context.Background()
		providers, err := observability.InitOTel(ctx, observability.OTelConfig{
			ServiceName:    cfg.Observability.OTelServiceName,
			ServiceVersion: cfg.Observability.OTelServiceVersion,
			Endpoint:       cfg.Observability.OTelEndpoint,
			Insecure:       cfg.Observability.OTelInsecure,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("failed to initialize OpenTelemetry, continuing without it")
		} else {
			otelShutdown = func(shutdownCtx context.Context) error {
				return observability.ShutdownOTel(shutdownCtx, providers, logger)
			}
			if otelMetrics, err = observability.NewOTelMetrics(); err != nil {
				logger.WithError(err).Error("failed to initialize OpenTelemetry metric instruments")
				otelMetrics = nil
			}
		}
	}

	tokenManager := auth.NewTokenManager()
	auditLogger := auth.NewAuditLogger(1000)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Error("failed to reach redis, rate limits will not be shared across instances")
		}
	}

	healthChecker := observability.NewHealthChecker(dbHandleFor(store), redisClient).
		WithStoreCheck(store.HealthCheck)

	server := api.NewServer(store, tokenManager, auditLogger, metrics, healthChecker).
		WithFeaturesConfig(cfg.Features)
	if otelMetrics != nil {
		server = server.WithOTelMetrics(otelMetrics)
	}
	if redisClient != nil {
		server = server.WithRateLimiter(middleware.NewDistributedRateLimitMiddleware(redisClient).Handler)
	} else {
		server = server.WithRateLimiter(middleware.NewRateLimitMiddleware().Handler)
	}

	mainMux := http.NewServeMux()
	mainMux.Handle("/", server)

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, healthChecker)
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      mainMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthSrv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	c := cron.New()
	if _, err := c.AddFunc("@every 10m", func() {
		revoked := tokenManager.CleanupExpiredTokens()
		if revoked > 0 {
			logger.Infof("cleaned up %d expired tokens", revoked)
		}
		if metrics != nil {
			metrics.APITokensActive.Set(float64(len(tokenManager.ListTokens())))
		}
	}); err != nil {
		logger.WithError(err).Error("failed to schedule token cleanup")
	}
	c.Start()
	defer c.Stop()

	if fsStore, ok := store.(*storage.FileSystemStore); ok {
		warmCache(context.Background(), fsStore, logger)

		watchCtx, cancelWatch := context.WithCancel(context.Background())
		defer cancelWatch()
		go func() {
			if err := fsStore.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
				logger.WithError(err).Error("schema directory watcher stopped")
			}
		}()
	}

	go func() {
		logger.Infof("serving API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("API server failed")
			os.Exit(1)
		}
	}()
	go func() {
		logger.Infof("serving health/metrics on %s", healthSrv.Addr)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	shutdown := observability.NewShutdownManager(logger, srv, cfg.Server.ShutdownTimeout)
	shutdown.RegisterNamedShutdownFunc("health/metrics server", func(ctx context.Context) error {
		return healthSrv.Shutdown(ctx)
	})
	if otelShutdown != nil {
		shutdown.RegisterNamedShutdownFunc("otel exporters", otelShutdown)
	}
	if redisClient != nil {
		shutdown.RegisterNamedShutdownFunc("redis client", func(context.Context) error {
			return redisClient.Close()
		})
	}
	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown did not complete cleanly")
		os.Exit(1)
	}
}

// newStore selects a storage backend per cfg.Type and returns a closer
// that releases any held resources.
func newStore(cfg storage.Config) (storage.Store, func(), error) {
	switch cfg.Type {
	case "postgres":
		store, err := postgres.NewStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := storage.NewFileSystemStore(cfg.FilesystemRoot, cfg.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// dbHandleFor returns the *sql.DB backing store when it is a postgres
// store, or nil otherwise, for the health checker's database probe.
func dbHandleFor(store storage.Store) *sql.DB {
	if pg, ok := store.(*postgres.Store); ok {
		return pg.DB()
	}
	return nil
}

// warmCache loads every persisted compiled table back into the
// in-process LRU concurrently, so the first request after a restart
// doesn't pay a cold compile.
func warmCache(ctx context.Context, store *storage.FileSystemStore, logger *observability.Logger) {
	schemas, err := store.ListSchemas(ctx)
	if err != nil {
		logger.WithError(err).Error("failed to list schemas for cache warming")
		return
	}

	type rangeForSchema struct {
		schema string
		min    string
		max    string
	}
	var targets []rangeForSchema
	for _, schema := range schemas {
		ranges, err := store.CompiledTableRanges(schema.Name)
		if err != nil {
			logger.WithError(err).Warnf("failed to list compiled tables for %q", schema.Name)
			continue
		}
		for _, r := range ranges {
			targets = append(targets, rangeForSchema{schema: schema.Name, min: r[0], max: r[1]})
		}
	}
	if len(targets) == 0 {
		return
	}

	var lastReported int
	errs := async.BatchWithProgress(ctx, targets, 8, "compiled table cache warming", 10*time.Second,
		func(ctx context.Context, t rangeForSchema) error {
			_, err := store.GetCompiledTable(ctx, t.schema, t.min, t.max)
			return err
		},
		func(completed, total int) {
			pct := completed * 100 / total
			if pct >= lastReported+25 || completed == total {
				lastReported = pct
				logger.Infof("cache warming: %d/%d compiled tables (%d%%)", completed, total, pct)
			}
		})
	if len(errs) > 0 {
		logger.Warnf("cache warming finished with %d errors", len(errs))
	} else {
		logger.Infof("warmed %d compiled tables", len(targets))
	}
}
