package api

import (
	"net/http"
	"time"

	"google.golang.org/protobuf/encoding/prototext"

	"github.com/platinummonkey/featureresolver/pkg/features/dynmsg"
	"github.com/platinummonkey/featureresolver/pkg/features/resolver"
	"github.com/platinummonkey/featureresolver/pkg/httputil"
	"github.com/platinummonkey/featureresolver/pkg/observability"
)

// merge handles POST /v1/merge: resolves an edition's defaults, then
// overlays parent and child text-format overrides onto it.
func (s *Server) merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
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
	ctx, span := observability.StartOperationSpan(r.Context(), "features.merge", req.SchemaName, minEdition, maxEdition)
	defer span.End()
	r = r.WithContext(ctx)

	_, schema, table, err := s.compiledTable(r, req.SchemaName, minEdition, maxEdition)
	if err != nil {
		s.recordMerge("failure", start)
		s.logAudit(r, "features.merge", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	instance, err := resolver.Create(schema.Base, req.Edition, table)
	if err != nil {
		s.recordMerge("failure", start)
		s.logAudit(r, "features.merge", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteResolverError(w, err)
		return
	}

	var parent, child *dynmsg.Container
	if req.ParentText != "" {
		parent = dynmsg.New(schema.Base)
		if err := parent.MergeMessageText(req.ParentText); err != nil {
			s.recordMerge("failure", start)
			observability.RecordSpanError(span, err)
			httputil.WriteBadRequest(w, err.Error())
			return
		}
	}
	if req.ChildText != "" {
		child = dynmsg.New(schema.Base)
		if err := child.MergeMessageText(req.ChildText); err != nil {
			s.recordMerge("failure", start)
			observability.RecordSpanError(span, err)
			httputil.WriteBadRequest(w, err.Error())
			return
		}
	}

	merged, err := instance.Merge(parent, child)
	if err != nil {
		s.recordMerge("failure", start)
		s.logAudit(r, "features.merge", req.SchemaName, "failure", err)
		observability.RecordSpanError(span, err)
		httputil.WriteResolverError(w, err)
		return
	}

	text, err := prototext.Marshal(merged.Message().Interface())
	if err != nil {
		s.recordMerge("failure", start)
		observability.RecordSpanError(span, err)
		httputil.WriteInternalError(w, err)
		return
	}

	s.recordMerge("success", start)
	s.logAudit(r, "features.merge", req.SchemaName, "success", nil)
	httputil.WriteSuccess(w, resolveResponse{Edition: req.Edition, Features: string(text)})
}

func (s *Server) recordMerge(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.MergeTotal.WithLabelValues(status).Inc()
	s.metrics.MergeDuration.WithLabelValues("all").Observe(time.Since(start).Seconds())
	if status == "failure" {
		s.metrics.MergeErrorsTotal.WithLabelValues("merge_error").Inc()
	}
}
