// Package schema validates the shape of feature-container message
// descriptors and carries the per-field metadata — targets and edition
// defaults — that the surrounding descriptor system attaches to feature
// fields but that a plain protobuf descriptor does not expose on its own.
//
// Editions in this system are opaque dotted strings rather than the closed
// numeric Edition enum a real protobuf toolchain would use, so that
// metadata is supplied out of band via Metadata rather than read off
// descriptorpb.FieldOptions directly.
package schema

import "google.golang.org/protobuf/reflect/protoreflect"

// EditionDefault pairs an edition with the textual value a feature field
// takes on in that edition and onward, until a later default supersedes it.
type EditionDefault struct {
	Edition string
	Value   string
}

// FieldMeta carries the out-of-band annotations a feature field needs that
// are not expressible on an ordinary protobuf field: the descriptor kinds
// the feature applies to, and its per-edition default values.
type FieldMeta struct {
	Targets         []string
	EditionDefaults []EditionDefault
}

// Metadata maps a feature field's fully-qualified name to its annotations.
// A field absent from the map is treated as having no targets and no
// edition defaults, which ValidateContainer and Compile both reject.
type Metadata map[protoreflect.FullName]FieldMeta

// Lookup returns the metadata for field, or a zero-value FieldMeta if none
// was supplied.
func (m Metadata) Lookup(field protoreflect.FieldDescriptor) FieldMeta {
	return m[field.FullName()]
}
