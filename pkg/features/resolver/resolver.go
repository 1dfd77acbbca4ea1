// Package resolver instantiates a resolver bound to one schema edition from
// a compiled FeatureSetDefaults table, and implements the three-layer merge
// that combines a parent's effective features with a child's declared
// overrides on top of that edition's defaults.
package resolver

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/platinummonkey/featureresolver/pkg/features/defaults"
	"github.com/platinummonkey/featureresolver/pkg/features/dynmsg"
	"github.com/platinummonkey/featureresolver/pkg/features/edition"
)

// Instance is bound to a single edition's defaults row. It is immutable
// after Create returns and safe for concurrent use: Merge takes its inputs
// by reference and returns a new value rather than mutating the instance.
type Instance struct {
	defaults *dynmsg.Container
}

// Create selects the defaults row matching edition from compiled, after
// checking edition falls within [compiled.MinimumEdition,
// compiled.MaximumEdition] and that compiled's rows are strictly increasing.
// base must be the same message schema the table was compiled against.
func Create(base protoreflect.MessageDescriptor, targetEdition string, compiled *defaults.FeatureSetDefaults) (*Instance, error) {
	if edition.Less(targetEdition, compiled.MinimumEdition) {
		return nil, &EditionBelowMinError{Edition: targetEdition, Minimum: compiled.MinimumEdition}
	}
	if edition.Less(compiled.MaximumEdition, targetEdition) {
		return nil, &EditionAboveMaxError{Edition: targetEdition, Maximum: compiled.MaximumEdition}
	}

	var previous string
	for i, row := range compiled.Defaults {
		if i > 0 && !edition.Less(previous, row.Edition) {
			return nil, &DefaultsNotMonotoneError{Previous: previous, Next: row.Edition}
		}
		previous = row.Edition
	}

	idx := upperBoundRows(compiled.Defaults, targetEdition)
	if idx == 0 {
		return nil, &defaults.NoDefaultForEditionError{Edition: targetEdition}
	}

	row := compiled.Defaults[idx-1]
	container, err := dynmsg.FromBytes(base, row.Features)
	if err != nil {
		return nil, err
	}

	return &Instance{defaults: container}, nil
}

// Merge overlays parent onto the instance's edition defaults, then child
// onto that, and validates the result. Precedence is child > parent >
// defaults: a field's effective value is child's if child sets it,
// otherwise parent's if parent sets it, otherwise the edition default.
// Message-typed fields compose by the same rule recursively, per standard
// protobuf merge semantics.
func (r *Instance) Merge(parent, child *dynmsg.Container) (*dynmsg.Container, error) {
	merged := r.defaults.Clone()
	merged.MergeFrom(parent)
	merged.MergeFrom(child)

	if err := validateMerged(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

func validateMerged(c *dynmsg.Container) error {
	md := c.Descriptor()
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		field := fields.Get(i)
		if field.Kind() != protoreflect.EnumKind {
			continue
		}

		num := c.Message().Get(field).Enum()
		if num == 0 {
			name := "0"
			if v := field.Enum().Values().ByNumber(num); v != nil {
				name = string(v.Name())
			}
			return &UnknownEnumValueError{Field: string(field.FullName()), Value: name}
		}
	}
	return nil
}

func upperBoundRows(rows []defaults.FeatureSetEditionDefault, target string) int {
	lo, hi := 0, len(rows)
	for lo < hi {
		mid := (lo + hi) / 2
		if edition.Less(target, rows[mid].Edition) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
