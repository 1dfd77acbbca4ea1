package defaults

import (
	"sort"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/platinummonkey/featureresolver/pkg/features/dynmsg"
	"github.com/platinummonkey/featureresolver/pkg/features/edition"
	"github.com/platinummonkey/featureresolver/pkg/features/schema"
)

// Compiler compiles a base feature container schema plus its extensions
// into a FeatureSetDefaults table. It is pure given its inputs: the dynamic
// message instances it creates while compiling are local to a single
// Compile call and never escape it.
type Compiler struct {
	validator *schema.Validator
	meta      schema.Metadata
}

// NewCompiler builds a Compiler that validates against meta.
func NewCompiler(meta schema.Metadata) *Compiler {
	return &Compiler{validator: schema.NewValidator(meta), meta: meta}
}

// Compile validates base and every extension, collects the set of editions
// named anywhere in their edition_defaults that is at most maxEdition, and
// produces one fully-populated row per collected edition.
//
// minEdition is not used to filter the collected edition set — rows below
// minEdition may appear in the returned table even though
// ResolverInstance.Create will reject a target edition below minEdition.
// This matches the upstream resolver's behavior: external callers only ever
// observe Create's range check, never the raw row set.
func (c *Compiler) Compile(base protoreflect.MessageDescriptor, extensions []protoreflect.FieldDescriptor, minEdition, maxEdition string) (*FeatureSetDefaults, error) {
	if err := c.validator.ValidateContainer(base); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		if err := c.validator.ValidateExtension(base, ext); err != nil {
			return nil, err
		}
		if err := c.validator.ValidateContainer(ext.Message()); err != nil {
			return nil, err
		}
	}

	editions := c.collectEditions(base, maxEdition)
	for _, ext := range extensions {
		for e := range c.collectEditionSet(ext.Message(), maxEdition) {
			editions[e] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(editions))
	for e := range editions {
		sorted = append(sorted, e)
	}
	edition.SortStrings(sorted)

	table := &FeatureSetDefaults{MinimumEdition: minEdition, MaximumEdition: maxEdition}
	for _, e := range sorted {
		row, err := c.buildRow(base, extensions, e)
		if err != nil {
			return nil, err
		}
		table.Defaults = append(table.Defaults, FeatureSetEditionDefault{Edition: e, Features: row})
	}

	return table, nil
}

func (c *Compiler) collectEditions(md protoreflect.MessageDescriptor, maxEdition string) map[string]struct{} {
	return c.collectEditionSet(md, maxEdition)
}

func (c *Compiler) collectEditionSet(md protoreflect.MessageDescriptor, maxEdition string) map[string]struct{} {
	set := make(map[string]struct{})
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		field := fields.Get(i)
		for _, d := range c.meta.Lookup(field).EditionDefaults {
			if edition.Less(maxEdition, d.Edition) {
				continue
			}
			set[d.Edition] = struct{}{}
		}
	}
	return set
}

func (c *Compiler) buildRow(base protoreflect.MessageDescriptor, extensions []protoreflect.FieldDescriptor, e string) ([]byte, error) {
	container := dynmsg.New(base)
	if err := fillDefaultsInto(container, c.meta, e); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		sub := container.SubMessage(ext)
		if err := fillDefaultsInto(sub, c.meta, e); err != nil {
			return nil, err
		}
	}
	return container.Marshal()
}

// fillDefaultsInto populates every field of container's own schema for
// edition e, per FillDefaults in the upstream resolver: message-typed
// fields merge every qualifying default in ascending edition order
// (additive), scalar and enum fields take only the latest qualifying
// default.
func fillDefaultsInto(container *dynmsg.Container, meta schema.Metadata, e string) error {
	md := container.Descriptor()
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		field := fields.Get(i)
		container.Clear(field)

		entries := append([]schema.EditionDefault(nil), meta.Lookup(field).EditionDefaults...)
		sort.SliceStable(entries, func(i, j int) bool {
			return edition.Less(entries[i].Edition, entries[j].Edition)
		})

		idx := upperBound(entries, e)
		if idx == 0 {
			return &NoDefaultForEditionError{Field: string(field.FullName()), Edition: e}
		}

		if field.Kind() == protoreflect.MessageKind || field.Kind() == protoreflect.GroupKind {
			sub := container.SubMessage(field)
			for _, entry := range entries[:idx] {
				if err := sub.MergeMessageText(entry.Value); err != nil {
					return &MalformedDefaultError{Field: string(field.FullName()), Value: entry.Value, Err: err}
				}
			}
		} else {
			last := entries[idx-1]
			if err := container.MergeFieldText(field, last.Value); err != nil {
				return &MalformedDefaultError{Field: string(field.FullName()), Value: last.Value, Err: err}
			}
		}
	}
	return nil
}

// upperBound returns the index of the first entry whose edition is
// strictly greater than e, assuming entries is sorted ascending by
// edition.Less. Mirrors edition.UpperBound but over EditionDefault values.
func upperBound(entries []schema.EditionDefault, e string) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if edition.Less(e, entries[mid].Edition) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
