package schema

import "fmt"

// UnsupportedShapeError reports a feature container schema that uses a
// construct the resolver cannot handle: oneofs, required fields, repeated
// fields, or a field with no targets annotation.
type UnsupportedShapeError struct {
	Type   string // fully-qualified message or field name
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// UnknownExtensionError reports that an extension field could not be found
// against the base feature container.
type UnknownExtensionError struct {
	Base string
}

func (e *UnknownExtensionError) Error() string {
	return fmt.Sprintf("unknown extension of %s", e.Base)
}

// NotAnExtensionOfError reports that an extension field extends a message
// other than the expected base.
type NotAnExtensionOfError struct {
	Extension string
	Base      string
}

func (e *NotAnExtensionOfError) Error() string {
	return fmt.Sprintf("extension %s is not an extension of %s", e.Extension, e.Base)
}

// NotMessageTypedError reports a feature extension whose value is scalar.
// Feature extensions must be messages so new fields can be added later
// without breaking wire compatibility.
type NotMessageTypedError struct {
	Extension string
}

func (e *NotMessageTypedError) Error() string {
	return fmt.Sprintf("feature extension %s is not of message type; feature extensions must always use messages to allow for evolution", e.Extension)
}

// RepeatedExtensionError reports a repeated feature extension, which is
// unsupported: only singular extensions are allowed.
type RepeatedExtensionError struct {
	Extension string
}

func (e *RepeatedExtensionError) Error() string {
	return fmt.Sprintf("only singular feature extensions are supported, found repeated extension %s", e.Extension)
}

// NestedExtensionsError reports a feature extension whose payload message
// itself declares extensions or extension ranges.
type NestedExtensionsError struct {
	Extension string
}

func (e *NestedExtensionsError) Error() string {
	return fmt.Sprintf("nested extensions in feature extension %s are not supported", e.Extension)
}
