package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/featureresolver/pkg/features/defaults"
	"github.com/platinummonkey/featureresolver/pkg/features/protosource"
	"github.com/platinummonkey/featureresolver/pkg/storage"
)

// compiledTable loads the schema named name and returns a compiled table
// for [minEdition, maxEdition], reusing a cached table from the store when
// available and compiling (and caching) one otherwise.
func (s *Server) compiledTable(r *http.Request, name, minEdition, maxEdition string) (*storage.SchemaRecord, *protosource.Schema, *defaults.FeatureSetDefaults, error) {
	rec, schema, err := s.loadSchema(r.Context(), name)
	if err != nil {
		return nil, nil, nil, err
	}

	if cached, err := s.store.GetCompiledTable(r.Context(), name, minEdition, maxEdition); err == nil && cached != nil {
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.WithLabelValues("compiled_table").Inc()
		}
		if s.otelMetrics != nil {
			s.otelMetrics.RecordCacheHit(r.Context(), "compiled_table")
		}
		return rec, schema, cached.Table, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues("compiled_table").Inc()
	}
	if s.otelMetrics != nil {
		s.otelMetrics.RecordCacheMiss(r.Context(), "compiled_table")
	}

	table, err := defaults.NewCompiler(schema.Metadata).Compile(schema.Base, schema.Extensions, minEdition, maxEdition)
	if err != nil {
		return nil, nil, nil, err
	}

	putStart := time.Now()
	putErr := s.store.PutCompiledTable(r.Context(), &storage.CompiledTableRecord{
		SchemaName: name,
		Table:      table,
		CompiledAt: time.Now(),
	})
	if s.otelMetrics != nil {
		s.otelMetrics.RecordStorageOperation(r.Context(), "put_compiled_table", s.storageType(), time.Since(putStart), 0, putErr)
	}

	return rec, schema, table, nil
}

func (s *Server) storageType() string {
	switch s.store.(type) {
	case *storage.FileSystemStore:
		return "filesystem"
	default:
		return "postgres"
	}
}
