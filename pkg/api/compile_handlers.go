package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/featureresolver/pkg/features/defaults"
	"github.com/platinummonkey/featureresolver/pkg/httputil"
	"github.com/platinummonkey/featureresolver/pkg/observability"
	"github.com/platinummonkey/featureresolver/pkg/storage"
)

// compile handles POST /v1/compile: builds a FeatureSetDefaults table for
// a schema over an edition range and caches it.
func (s *Server) compile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	minEdition, maxEdition := s.editionRange(req.MinimumEdition, req.MaximumEdition)
	if req.SchemaName == "" || minEdition == "" || maxEdition == "" {
		httputil.WriteBadRequest(w, "schema_name is required, and minimum_edition/maximum_edition must be set on the request or configured as server defaults")
		return
	}
	if !httputil.RequireValidEditionRange(w, minEdition, maxEdition) {
		return
	}

	start := time.Now()
	ctx, span := observability.StartOperationSpan(r.Context(), "schema.compile", req.SchemaName, minEdition, maxEdition)
	defer span.End()

	_, schema, err := s.loadSchema(ctx, req.SchemaName)
	if err != nil {
		s.recordCompile("failure", start)
		s.logAudit(r, "schema.compile", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteNotFoundError(w, err.Error())
		return
	}

	table, err := defaults.NewCompiler(schema.Metadata).Compile(schema.Base, schema.Extensions, minEdition, maxEdition)
	if err != nil {
		s.recordCompile("failure", start)
		s.logAudit(r, "schema.compile", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteResolverError(w, err)
		return
	}

	rec := &storage.CompiledTableRecord{
		SchemaName: req.SchemaName,
		Table:      table,
		CompiledAt: time.Now(),
	}
	if err := s.store.PutCompiledTable(ctx, rec); err != nil {
		s.recordCompile("failure", start)
		observability.RecordSpanError(span, err)
		httputil.WriteInternalError(w, err)
		return
	}

	s.recordCompile("success", start)
	s.logAudit(r, "schema.compile", req.SchemaName, "success", nil)
	httputil.WriteSuccess(w, table)
}

func (s *Server) recordCompile(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.CompileTotal.WithLabelValues(status).Inc()
	s.metrics.CompileDuration.WithLabelValues("all").Observe(time.Since(start).Seconds())
	if status == "failure" {
		s.metrics.CompileErrorsTotal.WithLabelValues("compile_error").Inc()
	}
}
