package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/platinummonkey/featureresolver/pkg/features/defaults"
	"github.com/platinummonkey/featureresolver/pkg/features/dynmsg"
	"github.com/platinummonkey/featureresolver/pkg/features/protosource"
	"github.com/platinummonkey/featureresolver/pkg/features/resolver"
)

const featureSetProto = `
syntax = "proto2";
package testfeatures;

message FeatureSet {
  extensions 1000 to max;

  optional string x = 1;
  optional Nested m = 2;
  optional Status e = 3;
  optional int32 y = 4;

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
  testfeatures.FeatureSet.m:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "a: 1"}
      - {edition: "2024", value: "b: 2"}
  testfeatures.FeatureSet.e:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "A"}
  testfeatures.ExtFeatures.b:
    targets: ["TARGET_TYPE_FIELD"]
    edition_defaults:
      - {edition: "2022", value: "\"ext-default\""}
`

func loadFixture(t *testing.T) *protosource.Schema {
	t.Helper()
	s, err := protosource.Load(context.Background(), protosource.Source{
		Files:           map[string]string{"feature_set.proto": featureSetProto},
		EntryFile:       "feature_set.proto",
		BaseMessage:     "testfeatures.FeatureSet",
		ExtensionFields: []string{"testfeatures.ext"},
		Annotations:     featureSetAnnotations,
	})
	require.NoError(t, err)
	return s
}

func field(md protoreflect.MessageDescriptor, name string) protoreflect.FieldDescriptor {
	return md.Fields().ByName(protoreflect.Name(name))
}

func compileTable(t *testing.T, s *protosource.Schema) *defaults.FeatureSetDefaults {
	t.Helper()
	c := defaults.NewCompiler(s.Metadata)
	table, err := c.Compile(s.Base, s.Extensions, "2020", "2025")
	require.NoError(t, err)
	return table
}

func TestCreate_SelectsMatchingRow(t *testing.T) {
	s := loadFixture(t)
	table := compileTable(t, s)

	// S2: resolving at "2023" should pick up the "2022" row (x="A");
	// resolving at "2024" should pick up the "2024" row (x="B").
	r2023, err := resolver.Create(s.Base, "2023", table)
	require.NoError(t, err)
	merged, err := r2023.Merge(nil, nil)
	require.NoError(t, err)
	require.Equal(t, "A", merged.Message().Get(field(s.Base, "x")).String())

	r2024, err := resolver.Create(s.Base, "2024", table)
	require.NoError(t, err)
	merged2024, err := r2024.Merge(nil, nil)
	require.NoError(t, err)
	require.Equal(t, "B", merged2024.Message().Get(field(s.Base, "x")).String())
}

func TestCreate_EditionBelowMin(t *testing.T) {
	s := loadFixture(t)
	table := compileTable(t, s)
	_, err := resolver.Create(s.Base, "2019", table)
	require.Error(t, err)
	var belowMin *resolver.EditionBelowMinError
	require.ErrorAs(t, err, &belowMin)
}

func TestCreate_EditionAboveMax(t *testing.T) {
	s := loadFixture(t)
	table := compileTable(t, s)
	_, err := resolver.Create(s.Base, "2026", table)
	require.Error(t, err)
	var aboveMax *resolver.EditionAboveMaxError
	require.ErrorAs(t, err, &aboveMax)
}

func TestCreate_NoDefaultBelowEarliestRow(t *testing.T) {
	s := loadFixture(t)
	table := compileTable(t, s) // earliest row is "2022"
	_, err := resolver.Create(s.Base, "2021", table)
	require.Error(t, err)
	var noDefault *defaults.NoDefaultForEditionError
	require.ErrorAs(t, err, &noDefault)
}

func TestCreate_DefaultsNotMonotone(t *testing.T) {
	s := loadFixture(t)
	table := compileTable(t, s)
	// Corrupt the artifact by duplicating the last row at the front.
	table.Defaults = append([]defaults.FeatureSetEditionDefault{table.Defaults[len(table.Defaults)-1]}, table.Defaults...)
	_, err := resolver.Create(s.Base, "2024", table)
	require.Error(t, err)
	var notMonotone *resolver.DefaultsNotMonotoneError
	require.ErrorAs(t, err, &notMonotone)
}

func TestMerge_Precedence(t *testing.T) {
	// S4: parent {y:2}, child {x:"override"}; result {x:"override", y:2}.
	s := loadFixture(t)
	table := compileTable(t, s)
	r, err := resolver.Create(s.Base, "2022", table)
	require.NoError(t, err)

	yField := field(s.Base, "y")
	xField := field(s.Base, "x")

	parent := dynmsg.New(s.Base)
	require.NoError(t, parent.MergeFieldText(yField, "2"))

	child := dynmsg.New(s.Base)
	require.NoError(t, child.MergeFieldText(xField, "\"override\""))

	merged, err := r.Merge(parent, child)
	require.NoError(t, err)
	require.Equal(t, "override", merged.Message().Get(xField).String())
	require.Equal(t, int64(2), merged.Message().Get(yField).Int())
}

func TestMerge_EnumZeroRejected(t *testing.T) {
	// S5: enum field e defaults to A; child overrides to UNKNOWN (zero) and
	// the merge must fail.
	s := loadFixture(t)
	table := compileTable(t, s)
	r, err := resolver.Create(s.Base, "2022", table)
	require.NoError(t, err)

	eField := field(s.Base, "e")
	child := dynmsg.New(s.Base)
	require.NoError(t, child.MergeFieldText(eField, "UNKNOWN"))

	_, err = r.Merge(nil, child)
	require.Error(t, err)
	var unknownEnum *resolver.UnknownEnumValueError
	require.ErrorAs(t, err, &unknownEnum)
}

func TestMerge_ExtensionSubMessageSurvives(t *testing.T) {
	// S6: merging empty parent and child still surfaces the extension default.
	s := loadFixture(t)
	table := compileTable(t, s)
	r, err := resolver.Create(s.Base, "2022", table)
	require.NoError(t, err)

	merged, err := r.Merge(nil, nil)
	require.NoError(t, err)

	extField := s.Extensions[0]
	require.True(t, merged.Message().Has(extField))
	ext := merged.Message().Get(extField).Message()
	require.Equal(t, "ext-default", ext.Get(field(extField.Message(), "b")).String())
}
