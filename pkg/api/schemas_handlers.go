package api

import (
	"context"
	"net/http"
	"time"

	"github.com/platinummonkey/featureresolver/pkg/features/protosource"
	"github.com/platinummonkey/featureresolver/pkg/httputil"
	"github.com/platinummonkey/featureresolver/pkg/storage"
)

// registerSchema handles POST /v1/schemas: compiles the submitted proto
// source and annotation sidecar to validate it, then persists it.
func (s *Server) registerSchema(w http.ResponseWriter, r *http.Request) {
	var req registerSchemaRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	src := protosource.Source{
		Files:           req.Files,
		EntryFile:       req.EntryFile,
		BaseMessage:     req.BaseMessage,
		ExtensionFields: req.ExtensionFields,
		Annotations:     req.Annotations,
	}
	if _, err := protosource.Load(r.Context(), src); err != nil {
		s.logAudit(r, "schema.register", req.Name, "failure", err)
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	now := time.Now()
	rec := &storage.SchemaRecord{
		Name:            req.Name,
		Files:           req.Files,
		EntryFile:       req.EntryFile,
		BaseMessage:     req.BaseMessage,
		ExtensionFields: req.ExtensionFields,
		Annotations:     req.Annotations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.RegisterSchema(r.Context(), rec); err != nil {
		s.logAudit(r, "schema.register", req.Name, "failure", err)
		httputil.WriteInternalError(w, err)
		return
	}
	if err := s.store.InvalidateCompiledTables(r.Context(), req.Name); err != nil {
		s.logAudit(r, "schema.register", req.Name, "failure", err)
		httputil.WriteInternalError(w, err)
		return
	}

	if s.metrics != nil {
		if schemas, err := s.store.ListSchemas(r.Context()); err == nil {
			s.metrics.SchemasRegisteredTotal.Set(float64(len(schemas)))
		}
	}
	s.logAudit(r, "schema.register", req.Name, "success", nil)
	httputil.WriteCreated(w, toSchemaResponse(rec))
}

// listSchemas handles GET /v1/schemas.
func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListSchemas(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	resp := make([]schemaResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toSchemaResponse(rec))
	}
	httputil.WriteSuccess(w, resp)
}

func toSchemaResponse(rec *storage.SchemaRecord) schemaResponse {
	return schemaResponse{
		Name:            rec.Name,
		EntryFile:       rec.EntryFile,
		BaseMessage:     rec.BaseMessage,
		ExtensionFields: rec.ExtensionFields,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// loadSchema fetches a registered schema record and recompiles its
// descriptors with protosource.Load.
func (s *Server) loadSchema(ctx context.Context, name string) (*storage.SchemaRecord, *protosource.Schema, error) {
	rec, err := s.store.GetSchema(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	schema, err := protosource.Load(ctx, protosource.Source{
		Files:           rec.Files,
		EntryFile:       rec.EntryFile,
		BaseMessage:     rec.BaseMessage,
		ExtensionFields: rec.ExtensionFields,
		Annotations:     rec.Annotations,
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, schema, nil
}

func (s *Server) logAudit(r *http.Request, action, resourceID, status string, err error) {
	if s.audit == nil {
		return
	}
	_ = s.audit.LogFromRequest(r, action, "schema", resourceID, status, err)
}
