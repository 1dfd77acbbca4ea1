package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/featureresolver/pkg/config"
	"github.com/platinummonkey/featureresolver/pkg/storage"
)

const featureSetProto = `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  extensions 1000 to max;

  optional string x = 1;
  optional int32 y = 2;
}
`

const featureSetAnnotations = `
fields:
  testfeatures.FeatureSet.x:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "\"A\""}
      - {edition: "2024", value: "\"B\""}
  testfeatures.FeatureSet.y:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "1"}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.NewFileSystemStore(t.TempDir(), 16)
	require.NoError(t, err)
	return NewServer(store, nil, nil, nil, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func registerTestSchema(t *testing.T, s *Server) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/v1/schemas", registerSchemaRequest{
		Name:        "testfeatures",
		Files:       map[string]string{"feature_set.proto": featureSetProto},
		EntryFile:   "feature_set.proto",
		BaseMessage: "testfeatures.FeatureSet",
		Annotations: featureSetAnnotations,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterSchema(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid schema", func(t *testing.T) {
		registerTestSchema(t, s)
	})

	t.Run("missing name", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/v1/schemas", registerSchemaRequest{
			Files:       map[string]string{"feature_set.proto": featureSetProto},
			EntryFile:   "feature_set.proto",
			BaseMessage: "testfeatures.FeatureSet",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid proto source", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/v1/schemas", registerSchemaRequest{
			Name:        "broken",
			Files:       map[string]string{"feature_set.proto": "not valid proto"},
			EntryFile:   "feature_set.proto",
			BaseMessage: "testfeatures.FeatureSet",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListSchemas(t *testing.T) {
	s := newTestServer(t)
	registerTestSchema(t, s)

	rec := doJSON(t, s, http.MethodGet, "/v1/schemas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var schemas []schemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schemas))
	require.Len(t, schemas, 1)
	require.Equal(t, "testfeatures", schemas[0].Name)
}

func TestCompile(t *testing.T) {
	s := newTestServer(t)
	registerTestSchema(t, s)

	rec := doJSON(t, s, http.MethodPost, "/v1/compile", compileRequest{
		SchemaName:     "testfeatures",
		MinimumEdition: "2020",
		MaximumEdition: "2025",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var table struct {
		MinimumEdition string `json:"minimum_edition"`
		MaximumEdition string `json:"maximum_edition"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	require.Equal(t, "2020", table.MinimumEdition)
	require.Equal(t, "2025", table.MaximumEdition)

	t.Run("unknown schema", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/v1/compile", compileRequest{
			SchemaName:     "missing",
			MinimumEdition: "2020",
			MaximumEdition: "2025",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResolve(t *testing.T) {
	s := newTestServer(t)
	registerTestSchema(t, s)

	rec := doJSON(t, s, http.MethodPost, "/v1/resolve", resolveRequest{
		SchemaName:     "testfeatures",
		Edition:        "2023",
		MinimumEdition: "2020",
		MaximumEdition: "2025",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Features, `"A"`)
	require.Contains(t, resp.Features, "y")
}

func TestMerge(t *testing.T) {
	s := newTestServer(t)
	registerTestSchema(t, s)

	rec := doJSON(t, s, http.MethodPost, "/v1/merge", mergeRequest{
		SchemaName:     "testfeatures",
		Edition:        "2023",
		MinimumEdition: "2020",
		MaximumEdition: "2025",
		ChildText:      `x: "override"`,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Features, `"override"`)
	require.Contains(t, resp.Features, "y")
}

func TestResolve_UsesConfiguredDefaultEditionRange(t *testing.T) {
	store, err := storage.NewFileSystemStore(t.TempDir(), 16)
	require.NoError(t, err)
	s := NewServer(store, nil, nil, nil, nil).WithFeaturesConfig(config.FeaturesConfig{
		DefaultMinEdition: "2020",
		DefaultMaxEdition: "2025",
	})
	registerTestSchema(t, s)

	rec := doJSON(t, s, http.MethodPost, "/v1/resolve", resolveRequest{
		SchemaName: "testfeatures",
		Edition:    "2023",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Features, `"A"`)
}

func TestMerge_BadOverrideText(t *testing.T) {
	s := newTestServer(t)
	registerTestSchema(t, s)

	rec := doJSON(t, s, http.MethodPost, "/v1/merge", mergeRequest{
		SchemaName:     "testfeatures",
		Edition:        "2023",
		MinimumEdition: "2020",
		MaximumEdition: "2025",
		ChildText:      "not a valid text literal !!!",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
