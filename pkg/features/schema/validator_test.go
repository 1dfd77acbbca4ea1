package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/featureresolver/pkg/features/protosource"
	"github.com/platinummonkey/featureresolver/pkg/features/schema"
)

const validFeatureSetProto = `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  extensions 1000 to max;

  optional string x = 1;
  optional Nested m = 2;
  optional Status e = 3;

  message Nested {
    optional int32 a = 1;
    optional int32 b = 2;
  }

  enum Status {
    UNKNOWN = 0;
    A = 1;
  }
}

message ExtFeatures {
  optional string b = 1;
}

extend FeatureSet {
  optional ExtFeatures ext = 1000;
}
`

const validAnnotations = `
fields:
  testfeatures.FeatureSet.x:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "\"A\""}
  testfeatures.FeatureSet.m:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "a: 1"}
  testfeatures.FeatureSet.e:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "A"}
  testfeatures.ExtFeatures.b:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "\"B\""}
`

func loadValidSchema(t *testing.T) *protosource.Schema {
	t.Helper()
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:           map[string]string{"feature_set.proto": validFeatureSetProto},
		EntryFile:       "feature_set.proto",
		BaseMessage:     "testfeatures.FeatureSet",
		ExtensionFields: []string{"testfeatures.ext"},
		Annotations:     validAnnotations,
	})
	require.NoError(t, err)
	return s
}

func TestValidateContainer_Valid(t *testing.T) {
	s := loadValidSchema(t)
	v := schema.NewValidator(s.Metadata)
	require.NoError(t, v.ValidateContainer(s.Base))
}

func TestValidateContainer_RejectsOneof(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  oneof choice {
    string x = 1;
  }
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:       map[string]string{"f.proto": src},
		EntryFile:   "f.proto",
		BaseMessage: "testfeatures.FeatureSet",
	})
	require.NoError(t, err)

	v := schema.NewValidator(nil)
	err = v.ValidateContainer(s.Base)
	require.Error(t, err)
	var shapeErr *schema.UnsupportedShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestValidateContainer_RejectsRequired(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  required string x = 1;
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:       map[string]string{"f.proto": src},
		EntryFile:   "f.proto",
		BaseMessage: "testfeatures.FeatureSet",
	})
	require.NoError(t, err)

	v := schema.NewValidator(nil)
	err = v.ValidateContainer(s.Base)
	require.Error(t, err)
}

func TestValidateContainer_RejectsRepeated(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  repeated string x = 1;
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:       map[string]string{"f.proto": src},
		EntryFile:   "f.proto",
		BaseMessage: "testfeatures.FeatureSet",
	})
	require.NoError(t, err)

	v := schema.NewValidator(nil)
	err = v.ValidateContainer(s.Base)
	require.Error(t, err)
}

func TestValidateContainer_RejectsMissingTargets(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  optional string x = 1;
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:       map[string]string{"f.proto": src},
		EntryFile:   "f.proto",
		BaseMessage: "testfeatures.FeatureSet",
	})
	require.NoError(t, err)

	v := schema.NewValidator(schema.Metadata{}) // no targets recorded for x
	err = v.ValidateContainer(s.Base)
	require.Error(t, err)
}

func TestValidateExtension_Valid(t *testing.T) {
	s := loadValidSchema(t)
	v := schema.NewValidator(s.Metadata)
	require.NoError(t, v.ValidateExtension(s.Base, s.Extensions[0]))
}

func TestValidateExtension_Unknown(t *testing.T) {
	s := loadValidSchema(t)
	v := schema.NewValidator(s.Metadata)
	err := v.ValidateExtension(s.Base, nil)
	require.Error(t, err)
	var unknownErr *schema.UnknownExtensionError
	require.ErrorAs(t, err, &unknownErr)
}

func TestValidateExtension_NotAnExtensionOf(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  extensions 1000 to max;
  optional string x = 1;
}

message OtherBase {
  extensions 1000 to max;
}

message ExtFeatures {
  optional string b = 1;
}

extend OtherBase {
  optional ExtFeatures ext = 1000;
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:           map[string]string{"f.proto": src},
		EntryFile:       "f.proto",
		BaseMessage:     "testfeatures.FeatureSet",
		ExtensionFields: []string{"testfeatures.ext"},
	})
	require.NoError(t, err)

	v := schema.NewValidator(s.Metadata)
	err = v.ValidateExtension(s.Base, s.Extensions[0])
	require.Error(t, err)
	var notExtErr *schema.NotAnExtensionOfError
	require.ErrorAs(t, err, &notExtErr)
}

func TestValidateExtension_NotMessageTyped(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  extensions 1000 to max;
  optional string x = 1;
}

extend FeatureSet {
  optional string ext = 1000;
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:           map[string]string{"f.proto": src},
		EntryFile:       "f.proto",
		BaseMessage:     "testfeatures.FeatureSet",
		ExtensionFields: []string{"testfeatures.ext"},
	})
	require.NoError(t, err)

	v := schema.NewValidator(s.Metadata)
	err = v.ValidateExtension(s.Base, s.Extensions[0])
	require.Error(t, err)
	var notMsgErr *schema.NotMessageTypedError
	require.ErrorAs(t, err, &notMsgErr)
}

func TestValidateExtension_Repeated(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  extensions 1000 to max;
  optional string x = 1;
}

message ExtFeatures {
  optional string b = 1;
}

extend FeatureSet {
  repeated ExtFeatures ext = 1000;
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:           map[string]string{"f.proto": src},
		EntryFile:       "f.proto",
		BaseMessage:     "testfeatures.FeatureSet",
		ExtensionFields: []string{"testfeatures.ext"},
	})
	require.NoError(t, err)

	v := schema.NewValidator(s.Metadata)
	err = v.ValidateExtension(s.Base, s.Extensions[0])
	require.Error(t, err)
	var repErr *schema.RepeatedExtensionError
	require.ErrorAs(t, err, &repErr)
}

func TestValidateExtension_NestedExtensions(t *testing.T) {
	src := `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  extensions 1000 to max;
  optional string x = 1;
}

message ExtFeatures {
  extensions 2000 to max;
  optional string b = 1;
}

extend FeatureSet {
  optional ExtFeatures ext = 1000;
}
`
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:           map[string]string{"f.proto": src},
		EntryFile:       "f.proto",
		BaseMessage:     "testfeatures.FeatureSet",
		ExtensionFields: []string{"testfeatures.ext"},
	})
	require.NoError(t, err)

	v := schema.NewValidator(s.Metadata)
	err = v.ValidateExtension(s.Base, s.Extensions[0])
	require.Error(t, err)
	var nestedErr *schema.NestedExtensionsError
	require.ErrorAs(t, err, &nestedErr)
}
