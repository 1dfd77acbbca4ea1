// Package storage provides pluggable persistence backends for compiled
// feature-default tables and the schema registrations that produce them.
//
// # Overview
//
// The resolver packages (pkg/features/...) are pure: they compile and merge
// feature defaults in memory and never touch disk. This package is the
// durability and caching layer built on top of them. A SchemaRecord captures
// the proto source and YAML annotation sidecar registered for a feature
// container message; a CompiledTableRecord caches the FeatureSetDefaults
// table produced by defaults.Compiler for one edition range so that
// repeated ResolverInstance.Create calls don't recompile from source on
// every request.
//
// # Store Interface
//
//	type Store interface {
//		RegisterSchema(ctx, *SchemaRecord) error
//		GetSchema(ctx, name string) (*SchemaRecord, error)
//		ListSchemas(ctx) ([]*SchemaRecord, error)
//		PutCompiledTable(ctx, *CompiledTableRecord) error
//		GetCompiledTable(ctx, schemaName, minEdition, maxEdition string) (*CompiledTableRecord, error)
//		InvalidateCompiledTables(ctx, schemaName string) error
//		HealthCheck(ctx) error
//	}
//
// All methods accept context.Context as the first parameter so HTTP
// handlers and CLI commands can propagate cancellation and timeouts down
// to the backend.
//
// # Backend Implementations
//
// FileSystemStore: schema records and compiled tables as JSON files under a
// root directory, fronted by an in-process LRU (hashicorp/golang-lru) cache
// of compiled tables. Default backend for local development and
// single-instance deployments.
//
//	store, err := storage.NewFileSystemStore("/var/lib/featureresolver", 256)
//
// postgres.Store: schema and compiled-table rows in PostgreSQL (lib/pq),
// for multi-instance deployments that need a shared registry. It keeps no
// in-process cache of compiled tables: every GetCompiledTable reads the
// shared row. This package never builds a cross-process cache.
//
//	cfg := storage.Config{Type: "postgres", PostgresURL: "postgres://localhost/featureresolver"}
//	store, err := postgres.NewStore(cfg)
//
// # Configuration
//
//	cfg := storage.DefaultConfig()
//	cfg.Type = "postgres"
//	cfg.PostgresURL = "postgres://localhost/featureresolver"
//	cfg.PostgresMaxConns = 20
//	cfg.PostgresMinConns = 2
//	cfg.PostgresTimeout = 10 * time.Second
//	cfg.CacheSize = 256
//
// # Out-of-Band Edits
//
// FileSystemStore.Watch uses fsnotify to watch the schema directory tree
// and drop cached entries for any schema whose files change outside of
// RegisterSchema/PutCompiledTable, e.g. an operator editing schema.json
// by hand or a sync job dropping in updated proto sources.
//
// # Cache Invalidation
//
// InvalidateCompiledTables drops every cached and persisted table for one
// schema name, forcing the next ResolverInstance.Create for that schema to
// recompile from the registered proto source and annotations. Callers
// invoke it after RegisterSchema replaces an existing schema's files.
//
// # Related Packages
//
//   - pkg/features/defaults: produces the FeatureSetDefaults tables this
//     package persists
//   - pkg/features/protosource: compiles the proto source and annotations
//     a SchemaRecord carries
//   - pkg/api: HTTP layer that registers schemas and serves compiled
//     tables through a Store
package storage
