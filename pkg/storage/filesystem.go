package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// FileSystemStore implements Store using the local filesystem for schema
// registrations and compiled tables, fronted by an in-process LRU cache
// for compiled tables. This is the default backend for local development
// and single-instance deployments.
type FileSystemStore struct {
	rootDir string
	cache   *lru.Cache[string, *CompiledTableRecord]
}

// NewFileSystemStore creates a filesystem-backed store rooted at rootDir.
func NewFileSystemStore(rootDir string, cacheSize int) (*FileSystemStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, *CompiledTableRecord](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create compiled table cache: %w", err)
	}

	return &FileSystemStore{rootDir: rootDir, cache: cache}, nil
}

func (s *FileSystemStore) schemaDir(name string) string {
	return filepath.Join(s.rootDir, "schemas", name)
}

func (s *FileSystemStore) tablePath(schemaName, minEdition, maxEdition string) string {
	return filepath.Join(s.schemaDir(schemaName), "tables", fmt.Sprintf("%s_%s.json", minEdition, maxEdition))
}

func cacheKey(schemaName, minEdition, maxEdition string) string {
	return schemaName + "|" + minEdition + "|" + maxEdition
}

// RegisterSchema implements Store.RegisterSchema.
func (s *FileSystemStore) RegisterSchema(ctx context.Context, rec *SchemaRecord) error {
	dir := s.schemaDir(rec.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal schema record: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "schema.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write schema record: %w", err)
	}

	return nil
}

// GetSchema implements Store.GetSchema.
func (s *FileSystemStore) GetSchema(ctx context.Context, name string) (*SchemaRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.schemaDir(name), "schema.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %q: %w", name, err)
	}

	var rec SchemaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema %q: %w", name, err)
	}

	return &rec, nil
}

// ListSchemas implements Store.ListSchemas.
func (s *FileSystemStore) ListSchemas(ctx context.Context) ([]*SchemaRecord, error) {
	schemasDir := filepath.Join(s.rootDir, "schemas")
	entries, err := os.ReadDir(schemasDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read schemas directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	records := make([]*SchemaRecord, 0, len(names))
	for _, name := range names {
		rec, err := s.GetSchema(ctx, name)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// PutCompiledTable implements Store.PutCompiledTable.
func (s *FileSystemStore) PutCompiledTable(ctx context.Context, rec *CompiledTableRecord) error {
	dir := filepath.Join(s.schemaDir(rec.SchemaName), "tables")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create tables directory: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal compiled table: %w", err)
	}

	path := s.tablePath(rec.SchemaName, rec.Table.MinimumEdition, rec.Table.MaximumEdition)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write compiled table: %w", err)
	}

	s.cache.Add(cacheKey(rec.SchemaName, rec.Table.MinimumEdition, rec.Table.MaximumEdition), rec)
	return nil
}

// GetCompiledTable implements Store.GetCompiledTable.
func (s *FileSystemStore) GetCompiledTable(ctx context.Context, schemaName, minEdition, maxEdition string) (*CompiledTableRecord, error) {
	key := cacheKey(schemaName, minEdition, maxEdition)
	if rec, ok := s.cache.Get(key); ok {
		return rec, nil
	}

	data, err := os.ReadFile(s.tablePath(schemaName, minEdition, maxEdition))
	if err != nil {
		return nil, fmt.Errorf("failed to read compiled table for %q [%s,%s]: %w", schemaName, minEdition, maxEdition, err)
	}

	var rec CompiledTableRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal compiled table: %w", err)
	}

	s.cache.Add(key, &rec)
	return &rec, nil
}

// InvalidateCompiledTables implements Store.InvalidateCompiledTables,
// dropping every cached and persisted table for schemaName so the next
// lookup forces a recompile.
func (s *FileSystemStore) InvalidateCompiledTables(ctx context.Context, schemaName string) error {
	prefix := schemaName + "|"
	for _, key := range s.cache.Keys() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.cache.Remove(key)
		}
	}

	dir := filepath.Join(s.schemaDir(schemaName), "tables")
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to invalidate compiled tables for %q: %w", schemaName, err)
	}
	return nil
}

// HealthCheck implements Store.HealthCheck.
func (s *FileSystemStore) HealthCheck(ctx context.Context) error {
	probe := filepath.Join(s.rootDir, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("filesystem store unwritable: %w", err)
	}
	return os.Remove(probe)
}
