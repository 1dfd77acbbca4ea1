package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/platinummonkey/featureresolver/pkg/features/defaults"
	"github.com/platinummonkey/featureresolver/pkg/storage"
)

// Store implements storage.Store using PostgreSQL for durable persistence
// of schema registrations and compiled FeatureSetDefaults tables.
type Store struct {
	db     *sql.DB
	config storage.Config
}

// NewStore connects to PostgreSQL and returns a durable Store.
func NewStore(config storage.Config) (*Store, error) {
	db, err := sql.Open("postgres", config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(config.PostgresMaxConns)
	db.SetMaxIdleConns(config.PostgresMinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), config.PostgresTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Store{db: db, config: config}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection pool, for callers that need to
// probe it directly (e.g. the health checker).
func (s *Store) DB() *sql.DB {
	return s.db
}

// RegisterSchema implements storage.Store.RegisterSchema.
func (s *Store) RegisterSchema(ctx context.Context, rec *storage.SchemaRecord) error {
	filesJSON, err := json.Marshal(rec.Files)
	if err != nil {
		return fmt.Errorf("failed to marshal schema files: %w", err)
	}
	extJSON, err := json.Marshal(rec.ExtensionFields)
	if err != nil {
		return fmt.Errorf("failed to marshal extension fields: %w", err)
	}

	query := `
		INSERT INTO schemas (name, files, entry_file, base_message, extension_fields, annotations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (name) DO UPDATE SET
			files = EXCLUDED.files,
			entry_file = EXCLUDED.entry_file,
			base_message = EXCLUDED.base_message,
			extension_fields = EXCLUDED.extension_fields,
			annotations = EXCLUDED.annotations,
			updated_at = now()
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		rec.Name, filesJSON, rec.EntryFile, rec.BaseMessage, extJSON, rec.Annotations,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to register schema %q: %w", rec.Name, err)
	}

	return nil
}

// GetSchema implements storage.Store.GetSchema.
func (s *Store) GetSchema(ctx context.Context, name string) (*storage.SchemaRecord, error) {
	query := `
		SELECT name, files, entry_file, base_message, extension_fields, annotations, created_at, updated_at
		FROM schemas
		WHERE name = $1
	`

	var rec storage.SchemaRecord
	var filesJSON, extJSON []byte
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&rec.Name, &filesJSON, &rec.EntryFile, &rec.BaseMessage, &extJSON, &rec.Annotations,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schema not found: %s", name)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get schema %q: %w", name, err)
	}

	if err := json.Unmarshal(filesJSON, &rec.Files); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema files: %w", err)
	}
	if err := json.Unmarshal(extJSON, &rec.ExtensionFields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extension fields: %w", err)
	}

	return &rec, nil
}

// ListSchemas implements storage.Store.ListSchemas.
func (s *Store) ListSchemas(ctx context.Context) ([]*storage.SchemaRecord, error) {
	query := `SELECT name FROM schemas ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		names = append(names, name)
	}

	records := make([]*storage.SchemaRecord, 0, len(names))
	for _, name := range names {
		rec, err := s.GetSchema(ctx, name)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// PutCompiledTable implements storage.Store.PutCompiledTable.
func (s *Store) PutCompiledTable(ctx context.Context, rec *storage.CompiledTableRecord) error {
	tableJSON, err := json.Marshal(rec.Table)
	if err != nil {
		return fmt.Errorf("failed to marshal compiled table: %w", err)
	}

	query := `
		INSERT INTO compiled_tables (schema_name, minimum_edition, maximum_edition, table_data, compiled_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (schema_name, minimum_edition, maximum_edition) DO UPDATE SET
			table_data = EXCLUDED.table_data,
			compiled_at = now()
		RETURNING compiled_at
	`

	err = s.db.QueryRowContext(ctx, query,
		rec.SchemaName, rec.Table.MinimumEdition, rec.Table.MaximumEdition, tableJSON,
	).Scan(&rec.CompiledAt)
	if err != nil {
		return fmt.Errorf("failed to persist compiled table for %q: %w", rec.SchemaName, err)
	}

	return nil
}

// GetCompiledTable implements storage.Store.GetCompiledTable.
func (s *Store) GetCompiledTable(ctx context.Context, schemaName, minEdition, maxEdition string) (*storage.CompiledTableRecord, error) {
	query := `
		SELECT schema_name, table_data, compiled_at
		FROM compiled_tables
		WHERE schema_name = $1 AND minimum_edition = $2 AND maximum_edition = $3
	`

	var rec storage.CompiledTableRecord
	var tableJSON []byte
	err := s.db.QueryRowContext(ctx, query, schemaName, minEdition, maxEdition).Scan(
		&rec.SchemaName, &tableJSON, &rec.CompiledAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("compiled table not found for %q [%s,%s]", schemaName, minEdition, maxEdition)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get compiled table for %q: %w", schemaName, err)
	}

	var table defaults.FeatureSetDefaults
	if err := json.Unmarshal(tableJSON, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal compiled table: %w", err)
	}
	rec.Table = &table

	return &rec, nil
}

// InvalidateCompiledTables implements storage.Store.InvalidateCompiledTables.
func (s *Store) InvalidateCompiledTables(ctx context.Context, schemaName string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM compiled_tables WHERE schema_name = $1`, schemaName)
	if err != nil {
		return fmt.Errorf("failed to invalidate compiled tables for %q: %w", schemaName, err)
	}
	return nil
}

// HealthCheck implements storage.Store.HealthCheck.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
