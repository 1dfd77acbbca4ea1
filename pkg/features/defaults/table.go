package defaults

// FeatureSetDefaults is the compiled artifact: one row of fully-populated
// feature values per relevant edition, bounded by an inclusive edition
// range. Defaults is strictly increasing in edition order. It is the
// persisted unit handed to ResolverInstance.Create and is safe to store and
// reload verbatim — Features within each row is the binary-serialized
// feature container for that edition.
type FeatureSetDefaults struct {
	MinimumEdition string                    `json:"minimum_edition"`
	MaximumEdition string                    `json:"maximum_edition"`
	Defaults       []FeatureSetEditionDefault `json:"defaults"`
}

// FeatureSetEditionDefault is a single compiled row: the edition it takes
// effect in, and the serialized feature container that applies from that
// edition onward until superseded by a later row.
type FeatureSetEditionDefault struct {
	Edition  string `json:"edition"`
	Features []byte `json:"features"`
}
