// Package protosource loads feature container schemas from protobuf source
// text using bufbuild/protocompile, and pairs the resulting descriptors with
// a YAML sidecar that carries the targets and edition-defaults annotations
// this generalized resolver expects per field.
//
// A real protobuf toolchain encodes those annotations as custom
// FieldOptions extensions keyed to a closed Edition enum. This system
// generalizes editions to arbitrary dotted strings, so the annotations are
// supplied alongside the schema instead of read off descriptorpb options.
package protosource

import (
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/linker"
	"google.golang.org/protobuf/reflect/protoreflect"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/featureresolver/pkg/features/schema"
)

// Schema is a compiled feature container schema: the base message
// descriptor, its extension fields, and the out-of-band metadata needed to
// validate and compile defaults for it.
type Schema struct {
	Base       protoreflect.MessageDescriptor
	Extensions []protoreflect.FieldDescriptor
	Metadata   schema.Metadata
}

// Source is the raw input to Load: one or more named .proto files plus a
// YAML sidecar describing targets and edition defaults.
type Source struct {
	// Files maps filename to proto source text. Must contain BaseMessage
	// and may reference it from other files via proto import statements.
	Files map[string]string
	// EntryFile is the file in Files that declares the base feature
	// container message.
	EntryFile string
	// BaseMessage is the fully-qualified name of the base feature
	// container message within EntryFile.
	BaseMessage string
	// ExtensionFields lists the fully-qualified names of the extension
	// fields (declared anywhere in Files) that extend BaseMessage.
	ExtensionFields []string
	// Annotations is the YAML sidecar text. See AnnotationSet for shape.
	Annotations string
}

// AnnotationSet is the YAML document shape Load expects for Source.Annotations.
//
//	fields:
//	  my.package.FeatureSet.field_presence:
//	    targets: ["TARGET_TYPE_FIELD"]
//	    edition_defaults:
//	      - edition: "2023"
//	        value: "EXPLICIT"
//	      - edition: "2024"
//	        value: "IMPLICIT"
type AnnotationSet struct {
	Fields map[string]struct {
		Targets         []string `yaml:"targets"`
		EditionDefaults []struct {
			Edition string `yaml:"edition"`
			Value   string `yaml:"value"`
		} `yaml:"edition_defaults"`
	} `yaml:"fields"`
}

// Load compiles src.Files with protocompile, resolves the base message and
// extension fields named in src, parses the YAML annotation sidecar, and
// returns an assembled Schema ready for validation and compilation.
func Load(ctx context.Context, src Source) (*Schema, error) {
	compiler := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(src.Files),
		},
	}

	filenames := make([]string, 0, len(src.Files))
	for name := range src.Files {
		filenames = append(filenames, name)
	}

	results, err := compiler.Compile(ctx, filenames...)
	if err != nil {
		return nil, fmt.Errorf("compiling feature schema: %w", err)
	}

	entry := results.FindFileByPath(src.EntryFile)
	if entry == nil {
		return nil, fmt.Errorf("entry file %q not found among compiled results", src.EntryFile)
	}

	base, err := findMessage(results, src.BaseMessage)
	if err != nil {
		return nil, err
	}

	extensions := make([]protoreflect.FieldDescriptor, 0, len(src.ExtensionFields))
	for _, name := range src.ExtensionFields {
		ext, err := findExtension(results, name)
		if err != nil {
			return nil, err
		}
		extensions = append(extensions, ext)
	}

	meta, err := parseAnnotations(src.Annotations)
	if err != nil {
		return nil, fmt.Errorf("parsing feature annotations: %w", err)
	}

	return &Schema{Base: base, Extensions: extensions, Metadata: meta}, nil
}

func findMessage(files linker.Files, fullName string) (protoreflect.MessageDescriptor, error) {
	for _, f := range files {
		if md := findMessageInFile(f, protoreflect.FullName(fullName)); md != nil {
			return md, nil
		}
	}
	return nil, fmt.Errorf("message %q not found in compiled schema", fullName)
}

func findMessageInFile(f protoreflect.FileDescriptor, name protoreflect.FullName) protoreflect.MessageDescriptor {
	return findMessageAmong(f.Messages(), name)
}

func findMessageAmong(msgs protoreflect.MessageDescriptors, name protoreflect.FullName) protoreflect.MessageDescriptor {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if md.FullName() == name {
			return md
		}
		if nested := findMessageAmong(md.Messages(), name); nested != nil {
			return nested
		}
	}
	return nil
}

func findExtension(files linker.Files, fullName string) (protoreflect.FieldDescriptor, error) {
	target := protoreflect.FullName(fullName)
	for _, f := range files {
		if fd := findExtensionAmong(f.Extensions(), target); fd != nil {
			return fd, nil
		}
		for i := 0; i < f.Messages().Len(); i++ {
			if fd := findExtensionInMessage(f.Messages().Get(i), target); fd != nil {
				return fd, nil
			}
		}
	}
	return nil, fmt.Errorf("extension field %q not found in compiled schema", fullName)
}

func findExtensionInMessage(md protoreflect.MessageDescriptor, name protoreflect.FullName) protoreflect.FieldDescriptor {
	if fd := findExtensionAmong(md.Extensions(), name); fd != nil {
		return fd
	}
	for i := 0; i < md.Messages().Len(); i++ {
		if fd := findExtensionInMessage(md.Messages().Get(i), name); fd != nil {
			return fd
		}
	}
	return nil
}

func findExtensionAmong(exts protoreflect.ExtensionDescriptors, name protoreflect.FullName) protoreflect.FieldDescriptor {
	for i := 0; i < exts.Len(); i++ {
		if exts.Get(i).FullName() == name {
			return exts.Get(i)
		}
	}
	return nil
}

func parseAnnotations(text string) (schema.Metadata, error) {
	meta := schema.Metadata{}
	if text == "" {
		return meta, nil
	}

	var set AnnotationSet
	if err := yaml.Unmarshal([]byte(text), &set); err != nil {
		return nil, err
	}

	for fieldName, entry := range set.Fields {
		fm := schema.FieldMeta{Targets: entry.Targets}
		for _, d := range entry.EditionDefaults {
			fm.EditionDefaults = append(fm.EditionDefaults, schema.EditionDefault{
				Edition: d.Edition,
				Value:   d.Value,
			})
		}
		meta[protoreflect.FullName(fieldName)] = fm
	}

	return meta, nil
}
