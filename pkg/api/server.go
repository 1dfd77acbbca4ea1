package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/featureresolver/pkg/auth"
	"github.com/platinummonkey/featureresolver/pkg/config"
	"github.com/platinummonkey/featureresolver/pkg/httputil"
	"github.com/platinummonkey/featureresolver/pkg/middleware"
	"github.com/platinummonkey/featureresolver/pkg/observability"
	"github.com/platinummonkey/featureresolver/pkg/storage"
)

// Server is the feature resolver's HTTP API.
type Server struct {
	store        storage.Store
	tokenManager *auth.TokenManager
	audit        *auth.AuditLogger
	metrics      *observability.Metrics
	otelMetrics  *observability.OTelMetrics
	health       *observability.HealthChecker
	logger       *observability.Logger
	features     config.FeaturesConfig
	router       *mux.Router
	v1           *mux.Router
}

// NewServer wires store, auth, metrics and health dependencies into a
// routed Server. tokenManager and metrics may be nil, in which case the
// corresponding middleware is skipped.
func NewServer(store storage.Store, tokenManager *auth.TokenManager, audit *auth.AuditLogger, metrics *observability.Metrics, health *observability.HealthChecker) *Server {
	s := &Server{
		store:        store,
		tokenManager: tokenManager,
		audit:        audit,
		metrics:      metrics,
		health:       health,
		logger:       observability.NewLogger(observability.InfoLevel, os.Stdout),
		router:       mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// WithFeaturesConfig sets the edition-range defaults applied when a
// compile/resolve/merge request omits its own minimum/maximum edition.
func (s *Server) WithFeaturesConfig(cfg config.FeaturesConfig) *Server {
	s.features = cfg
	return s
}

// editionRange resolves the effective [min, max] edition bounds for a
// request, falling back to the server's configured defaults when the
// request left either bound blank.
func (s *Server) editionRange(reqMin, reqMax string) (string, string) {
	min, max := reqMin, reqMax
	if min == "" {
		min = s.features.DefaultMinEdition
	}
	if max == "" {
		max = s.features.DefaultMaxEdition
	}
	return min, max
}

// WithOTelMetrics attaches an OpenTelemetry metrics instrument set
// alongside the Prometheus metrics, for deployments that export both.
func (s *Server) WithOTelMetrics(m *observability.OTelMetrics) *Server {
	s.otelMetrics = m
	return s
}

// WithRateLimiter installs rate limiting in front of /v1. Pass either
// (*middleware.RateLimitMiddleware).Handler for a single instance or
// (*middleware.DistributedRateLimitMiddleware).Handler when a redis client
// is configured, so replicas share one bucket per token/IP. gorilla/mux
// resolves a route's middleware chain at request time, so this is safe to
// call any time before the server starts accepting traffic.
func (s *Server) WithRateLimiter(handler func(http.Handler) http.Handler) *Server {
	s.v1.Use(handler)
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.recoverMiddleware)

	v1 := s.router.PathPrefix("/v1").Subrouter()
	s.v1 = v1

	if s.tokenManager != nil {
		authMW := middleware.NewAuthMiddleware(s.tokenManager, false)
		v1.Use(authMW.Handler)
	}

	v1.HandleFunc("/schemas", s.requireScope(auth.ScopeSchemasWrite, s.registerSchema)).Methods(http.MethodPost)
	v1.HandleFunc("/schemas", s.requireScope(auth.ScopeSchemasRead, s.listSchemas)).Methods(http.MethodGet)
	v1.HandleFunc("/compile", s.requireScope(auth.ScopeFeaturesCompile, s.compile)).Methods(http.MethodPost)
	v1.HandleFunc("/resolve", s.requireScope(auth.ScopeFeaturesResolve, s.resolve)).Methods(http.MethodPost)
	v1.HandleFunc("/merge", s.requireScope(auth.ScopeFeaturesResolve, s.merge)).Methods(http.MethodPost)

	if s.health != nil {
		s.router.HandleFunc("/healthz", s.health.Liveness).Methods(http.MethodGet)
		s.router.HandleFunc("/readyz", s.health.Readiness).Methods(http.MethodGet)
	}

	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}
}

// requireScope wraps handler so it only runs when the request carries
// scope; with no tokenManager configured (tests, local dev) it is a no-op.
func (s *Server) requireScope(scope auth.Scope, handler http.HandlerFunc) http.HandlerFunc {
	if s.tokenManager == nil {
		return handler
	}
	return middleware.RequireScope(scope)(handler).ServeHTTP
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// recoverMiddleware turns a panicking handler into a logged 500 instead of
// a crashed server.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer observability.RecoverPanicWithMetrics(s.logger, r.URL.Path, s.metrics, func() {
			httputil.WriteInternalError(w, fmt.Errorf("internal error"))
		})
		next.ServeHTTP(w, r)
	})
}
