package schema

import "google.golang.org/protobuf/reflect/protoreflect"

// Validator checks feature container schemas against the invariants the
// rest of the resolver depends on. It is pure and holds no mutable state
// beyond the metadata it was constructed with, so a single Validator may be
// shared freely across goroutines.
type Validator struct {
	meta Metadata
}

// NewValidator builds a Validator that consults meta for each field's
// targets annotation. A nil Metadata is treated as empty, so every field
// will be rejected for having no targets — callers always supply real
// metadata in practice.
func NewValidator(meta Metadata) *Validator {
	return &Validator{meta: meta}
}

// ValidateContainer inspects a feature container's schema — the base or an
// extension's payload — and fails with an UnsupportedShapeError naming the
// offending type or field the moment it finds a construct the resolver
// cannot handle: oneofs, required fields, repeated fields, or a field
// lacking a targets annotation.
func (v *Validator) ValidateContainer(md protoreflect.MessageDescriptor) error {
	if md.Oneofs().Len() > 0 {
		return &UnsupportedShapeError{
			Type:   string(md.FullName()),
			Reason: "contains unsupported oneof feature fields",
		}
	}

	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		field := fields.Get(i)

		if field.Cardinality() == protoreflect.Required {
			return &UnsupportedShapeError{
				Type:   string(field.FullName()),
				Reason: "is an unsupported required field",
			}
		}
		if field.Cardinality() == protoreflect.Repeated {
			return &UnsupportedShapeError{
				Type:   string(field.FullName()),
				Reason: "is an unsupported repeated field",
			}
		}
		if len(v.meta.Lookup(field).Targets) == 0 {
			return &UnsupportedShapeError{
				Type:   string(field.FullName()),
				Reason: "has no target specified",
			}
		}
	}

	return nil
}

// ValidateExtension checks that ext is usable as a feature extension of
// base: it must exist, extend base specifically, be message-typed and
// singular, and its payload must declare no further extensions of its own.
func (v *Validator) ValidateExtension(base protoreflect.MessageDescriptor, ext protoreflect.FieldDescriptor) error {
	if ext == nil {
		return &UnknownExtensionError{Base: string(base.FullName())}
	}

	if ext.ContainingMessage().FullName() != base.FullName() {
		return &NotAnExtensionOfError{
			Extension: string(ext.FullName()),
			Base:      string(base.FullName()),
		}
	}

	if ext.Message() == nil {
		return &NotMessageTypedError{Extension: string(ext.FullName())}
	}

	if ext.Cardinality() == protoreflect.Repeated {
		return &RepeatedExtensionError{Extension: string(ext.FullName())}
	}

	payload := ext.Message()
	if payload.Extensions().Len() > 0 || payload.ExtensionRanges().Len() > 0 {
		return &NestedExtensionsError{Extension: string(ext.FullName())}
	}

	return nil
}
