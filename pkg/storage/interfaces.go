// Package storage persists feature-container schema registrations and
// their compiled FeatureSetDefaults tables across server restarts. The
// core resolver packages never depend on this package: Store is a
// caching and durability layer built on top of them, not a replacement
// for pkg/features/defaults.Compiler.
package storage

import (
	"context"
	"time"

	"github.com/platinummonkey/featureresolver/pkg/features/defaults"
)

// SchemaRecord is a registered feature container: the proto source and
// annotation sidecar needed to reload it with protosource.Load.
type SchemaRecord struct {
	Name            string
	Files           map[string]string
	EntryFile       string
	BaseMessage     string
	ExtensionFields []string
	Annotations     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CompiledTableRecord is a compiled FeatureSetDefaults table cached
// against the schema and edition range it was compiled from.
type CompiledTableRecord struct {
	SchemaName string
	Table      *defaults.FeatureSetDefaults
	CompiledAt time.Time
}

// Store is the persistence and caching surface for schemas and compiled
// tables. Implementations must be safe for concurrent use.
type Store interface {
	RegisterSchema(ctx context.Context, rec *SchemaRecord) error
	GetSchema(ctx context.Context, name string) (*SchemaRecord, error)
	ListSchemas(ctx context.Context) ([]*SchemaRecord, error)

	PutCompiledTable(ctx context.Context, rec *CompiledTableRecord) error
	GetCompiledTable(ctx context.Context, schemaName, minEdition, maxEdition string) (*CompiledTableRecord, error)
	InvalidateCompiledTables(ctx context.Context, schemaName string) error

	HealthCheck(ctx context.Context) error
}

// Config selects and configures a storage backend.
type Config struct {
	Type string // "filesystem" or "postgres"

	FilesystemRoot string

	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	// CacheSize bounds FileSystemStore's in-process LRU of compiled
	// tables; a value below 1 gives a one-entry cache. postgres.Store
	// keeps no in-process cache.
	CacheSize int
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Type:             "filesystem",
		FilesystemRoot:   "/tmp/featureresolver",
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
		CacheSize:        256,
	}
}
