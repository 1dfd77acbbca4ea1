// Package cli implements featurectl, a thin command-line client for the
// feature resolver's HTTP API: register a schema, compile a defaults
// table, resolve a single edition, or merge parent/child overrides.
package cli
