// Package api exposes the feature resolver over HTTP: schema registration,
// defaults compilation, single-edition resolution, and parent/child merge,
// routed with gorilla/mux and fronted by the auth, rate-limit, and metrics
// middleware in pkg/middleware and pkg/observability.
//
// Routes:
//
//	POST /v1/schemas  register a feature container schema
//	GET  /v1/schemas  list registered schemas
//	POST /v1/compile  compile a FeatureSetDefaults table for an edition range
//	POST /v1/resolve  resolve the effective feature set for one edition
//	POST /v1/merge    merge parent/child overrides onto an edition's defaults
//	GET  /healthz     liveness probe, via pkg/observability/health.go
//	GET  /readyz      readiness probe, via pkg/observability/health.go
package api
