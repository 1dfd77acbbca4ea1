// Package edition defines the total ordering over edition strings used to
// sort and range-check feature default tables.
//
// An edition is an opaque, dot-separated string such as "2023" or
// "1.test_only". Editions are never parsed as numbers: two editions compare
// component by component, and within a component shorter-and-different
// always loses to longer, with lexicographic comparison breaking ties of
// equal length. This mirrors how releases like "99997_TEST_ONLY" are meant
// to sort after "2023" without requiring a numeric schema.
package edition

import "strings"

// Less reports whether edition a sorts strictly before edition b under the
// total ordering described in the package doc. It is usable directly as a
// less-than function for sort.Slice and slices.SortFunc-style comparators.
func Less(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	minLen := len(as)
	if len(bs) < minLen {
		minLen = len(bs)
	}

	for i := 0; i < minLen; i++ {
		if len(as[i]) != len(bs[i]) {
			return len(as[i]) < len(bs[i])
		}
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}

	return len(as) < len(bs)
}

// Compare returns -1, 0, or 1 depending on whether a sorts before, at the
// same position as, or after b.
func Compare(a, b string) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b occupy the same position in the ordering.
// Two editions occupy the same position only when they split into the same
// components, so this gives the same answer as a == b.
func Equal(a, b string) bool {
	return Compare(a, b) == 0
}

// SortStrings sorts editions ascending in place using Less.
func SortStrings(editions []string) {
	// insertion sort keeps this dependency-free and is plenty fast for the
	// handful of editions any one schema will declare defaults for.
	for i := 1; i < len(editions); i++ {
		for j := i; j > 0 && Less(editions[j], editions[j-1]); j-- {
			editions[j], editions[j-1] = editions[j-1], editions[j]
		}
	}
}

// UpperBound returns the index of the first element in a slice already
// sorted ascending by Less whose edition is strictly greater than target.
// It returns len(editions) if no such element exists. This is the Go
// analogue of absl::c_upper_bound used to locate the default row that
// applies to a given target edition.
func UpperBound(editions []string, target string) int {
	lo, hi := 0, len(editions)
	for lo < hi {
		mid := (lo + hi) / 2
		if Less(target, editions[mid]) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
