// Package middleware provides HTTP middleware for authentication,
// authorization, and rate limiting in front of pkg/api.
//
// # Overview
//
// This package implements request processing middleware including token
// authentication, scope enforcement, and rate limiting (in-memory or
// Redis-backed for multi-instance deployments).
//
// # Middleware Components
//
// AuthMiddleware: Bearer token authentication.
//
//	authMW := middleware.NewAuthMiddleware(tokenManager, false)
//	router.Use(authMW.Handler)
//	// Extracts the Bearer token, validates it, stores an *auth.AuthContext
//	// under contextkeys.AuthKey.
//
// RequireScope: per-route scope enforcement, reading the AuthContext
// AuthMiddleware already attached. Returns a func(http.Handler)
// http.Handler, so wrapping a plain handler needs its ServeHTTP:
//
//	wrapped := middleware.RequireScope(auth.ScopeSchemasWrite)(handler)
//	router.HandleFunc("/v1/schemas", wrapped.ServeHTTP)
//
// RateLimitMiddleware: in-memory token-bucket limiting, keyed by token
// prefix (or client IP for unauthenticated requests) and weighted by
// requestCost so a compile costs more of the bucket than a cached resolve.
//
//	limiter := middleware.NewRateLimitMiddleware()
//	router.Use(limiter.Handler)
//
// DistributedRateLimitMiddleware: Redis-backed limiting for multi-instance
// deployments. If Redis is unreachable it lets the request through
// unlimited (or answers 503 after SetFallbackEnabled(false)). This is
// what pkg/api.Server installs in front of /v1 when the server is
// configured with a redis client; RateLimitMiddleware is the fallback when
// it isn't.
//
//	limiter := middleware.NewDistributedRateLimitMiddleware(redisClient)
//	router.Use(limiter.Handler)
//
// # Rate Limiting Tiers and Cost Weighting
//
// See ratelimit.go's DefaultRateLimitConfig, PerTokenRateLimitConfig, and
// AdminRateLimitConfig for the anonymous/per-token/admin-scope limits, and
// requestCost for how /v1/compile, /v1/merge, and /v1/resolve consume more
// than one token per request: a compile builds a fresh table from source,
// while a resolve and a merge look up a cached table and a merge adds an
// overlay on top, so they are not equally expensive to allow through.
//
// # Related Packages
//
//   - pkg/auth: token validation and scope definitions
//   - pkg/contextkeys: the context key AuthContext is stored under
package middleware
