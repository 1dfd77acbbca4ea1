package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/platinummonkey/featureresolver/pkg/features/defaults"
)

func newTestStore(t *testing.T) *FileSystemStore {
	t.Helper()
	tmpDir := t.TempDir()
	store, err := NewFileSystemStore(tmpDir, 16)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewFileSystemStore(t *testing.T) {
	t.Run("creates store with new directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		rootDir := filepath.Join(tmpDir, "nested", "root")

		store, err := NewFileSystemStore(rootDir, 16)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		if store == nil {
			t.Fatal("Store should not be nil")
		}

		if _, err := os.Stat(rootDir); os.IsNotExist(err) {
			t.Error("Root directory should have been created")
		}
	})

	t.Run("zero cache size falls back to a minimum", func(t *testing.T) {
		tmpDir := t.TempDir()
		store, err := NewFileSystemStore(tmpDir, 0)
		if err != nil {
			t.Fatalf("Failed to create store with zero cache size: %v", err)
		}
		if store == nil {
			t.Fatal("Store should not be nil")
		}
	})
}

func TestFileSystemStore_RegisterAndGetSchema(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &SchemaRecord{
		Name:            "acme.features",
		Files:           map[string]string{"feature_set.proto": "syntax = \"proto2\";"},
		EntryFile:       "feature_set.proto",
		BaseMessage:     "acme.FeatureSet",
		ExtensionFields: []string{"acme.go_features"},
		Annotations:     "fields: {}",
	}

	if err := store.RegisterSchema(ctx, rec); err != nil {
		t.Fatalf("RegisterSchema failed: %v", err)
	}

	got, err := store.GetSchema(ctx, "acme.features")
	if err != nil {
		t.Fatalf("GetSchema failed: %v", err)
	}

	if got.BaseMessage != rec.BaseMessage {
		t.Errorf("BaseMessage = %q, want %q", got.BaseMessage, rec.BaseMessage)
	}
	if got.Files["feature_set.proto"] != rec.Files["feature_set.proto"] {
		t.Error("schema files were not round-tripped correctly")
	}
}

func TestFileSystemStore_GetSchema_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetSchema(context.Background(), "missing"); err == nil {
		t.Error("Expected error for unregistered schema")
	}
}

func TestFileSystemStore_ListSchemas(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"b.features", "a.features"} {
		rec := &SchemaRecord{Name: name, BaseMessage: "FeatureSet"}
		if err := store.RegisterSchema(ctx, rec); err != nil {
			t.Fatalf("RegisterSchema(%s) failed: %v", name, err)
		}
	}

	records, err := store.ListSchemas(ctx)
	if err != nil {
		t.Fatalf("ListSchemas failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 schemas, got %d", len(records))
	}
	if records[0].Name != "a.features" || records[1].Name != "b.features" {
		t.Errorf("ListSchemas should return schemas sorted by name, got %q, %q", records[0].Name, records[1].Name)
	}
}

func TestFileSystemStore_ListSchemas_Empty(t *testing.T) {
	store := newTestStore(t)
	records, err := store.ListSchemas(context.Background())
	if err != nil {
		t.Fatalf("ListSchemas failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected 0 schemas, got %d", len(records))
	}
}

func TestFileSystemStore_PutAndGetCompiledTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table := &defaults.FeatureSetDefaults{
		MinimumEdition: "2020",
		MaximumEdition: "2025",
		Defaults: []defaults.FeatureSetEditionDefault{
			{Edition: "2022", Features: []byte{0x01, 0x02}},
		},
	}
	rec := &CompiledTableRecord{SchemaName: "acme.features", Table: table}

	if err := store.PutCompiledTable(ctx, rec); err != nil {
		t.Fatalf("PutCompiledTable failed: %v", err)
	}

	got, err := store.GetCompiledTable(ctx, "acme.features", "2020", "2025")
	if err != nil {
		t.Fatalf("GetCompiledTable failed: %v", err)
	}
	if len(got.Table.Defaults) != 1 || got.Table.Defaults[0].Edition != "2022" {
		t.Error("compiled table was not round-tripped correctly")
	}
}

func TestFileSystemStore_GetCompiledTable_CacheHit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table := &defaults.FeatureSetDefaults{MinimumEdition: "2020", MaximumEdition: "2025"}
	rec := &CompiledTableRecord{SchemaName: "acme.features", Table: table}
	if err := store.PutCompiledTable(ctx, rec); err != nil {
		t.Fatalf("PutCompiledTable failed: %v", err)
	}

	// Remove the on-disk copy; the in-process cache should still serve it.
	if err := os.RemoveAll(filepath.Join(store.rootDir, "schemas", "acme.features", "tables")); err != nil {
		t.Fatalf("failed to remove on-disk table: %v", err)
	}

	if _, err := store.GetCompiledTable(ctx, "acme.features", "2020", "2025"); err != nil {
		t.Fatalf("expected cache hit, got error: %v", err)
	}
}

func TestFileSystemStore_GetCompiledTable_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetCompiledTable(context.Background(), "acme.features", "2020", "2025"); err == nil {
		t.Error("Expected error for uncompiled table")
	}
}

func TestFileSystemStore_InvalidateCompiledTables(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	table := &defaults.FeatureSetDefaults{MinimumEdition: "2020", MaximumEdition: "2025"}
	rec := &CompiledTableRecord{SchemaName: "acme.features", Table: table}
	if err := store.PutCompiledTable(ctx, rec); err != nil {
		t.Fatalf("PutCompiledTable failed: %v", err)
	}

	if err := store.InvalidateCompiledTables(ctx, "acme.features"); err != nil {
		t.Fatalf("InvalidateCompiledTables failed: %v", err)
	}

	if _, err := store.GetCompiledTable(ctx, "acme.features", "2020", "2025"); err == nil {
		t.Error("Expected error after invalidation, table should no longer be cached or persisted")
	}
}

func TestFileSystemStore_HealthCheck(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		store := newTestStore(t)
		if err := store.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck should return nil, got: %v", err)
		}
	})

	t.Run("missing root directory", func(t *testing.T) {
		store := newTestStore(t)
		if err := os.RemoveAll(store.rootDir); err != nil {
			t.Fatalf("failed to remove root directory: %v", err)
		}

		if err := store.HealthCheck(context.Background()); err == nil {
			t.Error("HealthCheck should return error for missing directory")
		}
	})
}
