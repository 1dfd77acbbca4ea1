package api

import (
	"net/http"
	"time"

	"google.golang.org/protobuf/encoding/prototext"

	"github.com/platinummonkey/featureresolver/pkg/features/resolver"
	"github.com/platinummonkey/featureresolver/pkg/httputil"
	"github.com/platinummonkey/featureresolver/pkg/observability"
)

// resolve handles POST /v1/resolve: resolves the effective feature set for
// one edition with no parent or child overrides.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	minEdition, maxEdition := s.editionRange(req.MinimumEdition, req.MaximumEdition)
	if req.SchemaName == "" || req.Edition == "" || minEdition == "" || maxEdition == "" {
		httputil.WriteBadRequest(w, "schema_name and edition are required, and minimum_edition/maximum_edition must be set on the request or configured as server defaults")
		return
	}
	if !httputil.RequireValidEditionRange(w, minEdition, maxEdition) {
		return
	}

	start := time.Now()
	ctx, span := observability.StartOperationSpan(r.Context(), "features.resolve", req.SchemaName, minEdition, maxEdition)
	defer span.End()
	r = r.WithContext(ctx)

	_, schema, table, err := s.compiledTable(r, req.SchemaName, minEdition, maxEdition)
	if err != nil {
		s.recordResolve("failure", start)
		s.logAudit(r, "features.resolve", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	instance, err := resolver.Create(schema.Base, req.Edition, table)
	if err != nil {
		s.recordResolve("failure", start)
		s.logAudit(r, "features.resolve", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteResolverError(w, err)
		return
	}

	merged, err := instance.Merge(nil, nil)
	if err != nil {
		s.recordResolve("failure", start)
		s.logAudit(r, "features.resolve", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteResolverError(w, err)
		return
	}

	text, err := prototext.Marshal(merged.Message().Interface())
	if err != nil {
		s.recordResolve("failure", start)
		observability.RecordSpanError(span, err)
		httputil.WriteInternalError(w, err)
		return
	}

	s.recordResolve("success", start)
	s.logAudit(r, "features.resolve", req.SchemaName, "success", nil)
	httputil.WriteSuccess(w, resolveResponse{Edition: req.Edition, Features: string(text)})
}

func (s *Server) recordResolve(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ResolveTotal.WithLabelValues(status).Inc()
	s.metrics.ResolveDuration.WithLabelValues("all").Observe(time.Since(start).Seconds())
	if status == "failure" {
		s.metrics.ResolveErrorsTotal.WithLabelValues("resolve_error").Inc()
	}
}
