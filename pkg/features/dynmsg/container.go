// Package dynmsg wraps google.golang.org/protobuf's dynamic message support
// behind the small capability surface the resolver needs: instantiate a
// message from a schema unknown at compile time, iterate and clear its
// fields, merge text-formatted values into it, and round-trip it through
// bytes. Keeping this behind one package means the compiler and resolver
// never touch dynamicpb or prototext directly.
package dynmsg

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Container is a mutable instance of a feature container message whose
// schema was discovered at runtime.
type Container struct {
	msg protoreflect.Message
}

// New instantiates an empty container of the given message schema.
func New(md protoreflect.MessageDescriptor) *Container {
	return &Container{msg: dynamicpb.NewMessage(md).ProtoReflect()}
}

// FromBytes instantiates a container of the given message schema and
// unmarshals data into it. Extensions of md declared in md's own file are
// decoded as extension fields; extensions declared in any other file are
// kept as unknown fields.
func FromBytes(md protoreflect.MessageDescriptor, data []byte) (*Container, error) {
	c := New(md)
	files := new(protoregistry.Files)
	if err := files.RegisterFile(md.ParentFile()); err != nil {
		return nil, fmt.Errorf("registering %s: %w", md.ParentFile().Path(), err)
	}
	opts := proto.UnmarshalOptions{Resolver: dynamicpb.NewTypes(files)}
	if err := opts.Unmarshal(data, c.msg.Interface()); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", md.FullName(), err)
	}
	return c, nil
}

// Descriptor returns the message schema this container was built from.
func (c *Container) Descriptor() protoreflect.MessageDescriptor {
	return c.msg.Descriptor()
}

// Message exposes the underlying reflective message for callers that need
// direct field access, such as enum-zero validation.
func (c *Container) Message() protoreflect.Message {
	return c.msg
}

// Clear resets field to its zero value.
func (c *Container) Clear(field protoreflect.FieldDescriptor) {
	c.msg.Clear(field)
}

// SubMessage returns the nested container for a message-typed field,
// allocating it if absent. Mutations through the returned Container are
// visible on c.
func (c *Container) SubMessage(field protoreflect.FieldDescriptor) *Container {
	return &Container{msg: c.msg.Mutable(field).Message()}
}

// MergeFieldText parses text as the textual value of a single scalar or
// enum field and merges (overwrites) it onto that field of c.
func (c *Container) MergeFieldText(field protoreflect.FieldDescriptor, text string) error {
	literal := fmt.Sprintf("%s: %s", field.Name(), text)
	tmp := c.msg.New().Interface()
	if err := prototext.Unmarshal([]byte(literal), tmp); err != nil {
		return fmt.Errorf("parsing default for field %s: %w", field.FullName(), err)
	}
	proto.Merge(c.msg.Interface(), tmp)
	return nil
}

// MergeMessageText parses text as a message literal and merges it into c,
// which must be a message-typed container (typically one obtained via
// SubMessage). Repeated merges are additive, matching text-format merge
// semantics: scalar fields overwrite, message fields recurse.
func (c *Container) MergeMessageText(text string) error {
	tmp := c.msg.New().Interface()
	if err := prototext.Unmarshal([]byte(text), tmp); err != nil {
		return fmt.Errorf("parsing default message %q: %w", text, err)
	}
	proto.Merge(c.msg.Interface(), tmp)
	return nil
}

// Marshal serializes c to its binary wire representation.
func (c *Container) Marshal() ([]byte, error) {
	return proto.Marshal(c.msg.Interface())
}

// Clone returns a deep copy of c.
func (c *Container) Clone() *Container {
	return &Container{msg: proto.Clone(c.msg.Interface()).ProtoReflect()}
}

// MergeFrom merges other onto c using standard protobuf merge semantics:
// scalar fields in other overwrite c's, message fields recurse.
func (c *Container) MergeFrom(other *Container) {
	if other == nil {
		return
	}
	proto.Merge(c.msg.Interface(), other.msg.Interface())
}
