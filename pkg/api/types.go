package api

import "time"

// registerSchemaRequest is the body of POST /v1/schemas.
type registerSchemaRequest struct {
	Name            string            `json:"name"`
	Files           map[string]string `json:"files"`
	EntryFile       string            `json:"entry_file"`
	BaseMessage     string            `json:"base_message"`
	ExtensionFields []string          `json:"extension_fields"`
	Annotations     string            `json:"annotations"`
}

// schemaResponse describes a registered schema, omitting its source files.
type schemaResponse struct {
	Name            string    `json:"name"`
	EntryFile       string    `json:"entry_file"`
	BaseMessage     string    `json:"base_message"`
	ExtensionFields []string  `json:"extension_fields"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// compileRequest is the body of POST /v1/compile.
type compileRequest struct {
	SchemaName     string `json:"schema_name"`
	MinimumEdition string `json:"minimum_edition"`
	MaximumEdition string `json:"maximum_edition"`
}

// resolveRequest is the body of POST /v1/resolve. MinimumEdition and
// MaximumEdition select (or compile, if uncached) the defaults table
// Edition is resolved against.
type resolveRequest struct {
	SchemaName     string `json:"schema_name"`
	Edition        string `json:"edition"`
	MinimumEdition string `json:"minimum_edition"`
	MaximumEdition string `json:"maximum_edition"`
}

// resolveResponse carries the resolved feature set as protobuf text format.
type resolveResponse struct {
	Edition  string `json:"edition"`
	Features string `json:"features"`
}

// mergeRequest is the body of POST /v1/merge. ParentText and ChildText are
// protobuf text-format literals of the feature container message.
type mergeRequest struct {
	SchemaName     string `json:"schema_name"`
	Edition        string `json:"edition"`
	MinimumEdition string `json:"minimum_edition"`
	MaximumEdition string `json:"maximum_edition"`
	ParentText     string `json:"parent_text"`
	ChildText      string `json:"child_text"`
}
