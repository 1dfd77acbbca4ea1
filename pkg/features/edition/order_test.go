package edition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"2023", "2024", true},
		{"2024", "2023", false},
		{"2023", "2023", false},
		{"2023", "99997_TEST_ONLY", true},
		{"99997_TEST_ONLY", "2023", false},
		{"1", "1.test_only", true},
		{"1.test_only", "1", false},
		{"1.a", "1.b", true},
		{"1.b", "1.a", false},
		{"1.ab", "1.b", false}, // "ab" is longer than "b" so it sorts after
	}

	for _, tc := range cases {
		got := Less(tc.a, tc.b)
		assert.Equalf(t, tc.want, got, "Less(%q, %q)", tc.a, tc.b)
	}
}

func TestLessIsStrictWeakOrdering(t *testing.T) {
	editions := []string{"2023", "2024", "1.test_only", "99997_TEST_ONLY", "2022"}
	for _, e := range editions {
		assert.False(t, Less(e, e), "edition %q must not be less than itself", e)
	}
}

func TestSortStrings(t *testing.T) {
	editions := []string{"2024", "2022", "99997_TEST_ONLY", "2023"}
	SortStrings(editions)
	assert.Equal(t, []string{"2022", "2023", "2024", "99997_TEST_ONLY"}, editions)
}

func TestUpperBound(t *testing.T) {
	sorted := []string{"2022", "2023", "2024"}

	assert.Equal(t, 0, UpperBound(sorted, "2021"))
	assert.Equal(t, 1, UpperBound(sorted, "2022"))
	assert.Equal(t, 2, UpperBound(sorted, "2023"))
	assert.Equal(t, 3, UpperBound(sorted, "2024"))
	assert.Equal(t, 3, UpperBound(sorted, "2099"))
}

func TestCompareAndEqual(t *testing.T) {
	assert.Equal(t, 0, Compare("2023", "2023"))
	assert.Equal(t, -1, Compare("2022", "2023"))
	assert.Equal(t, 1, Compare("2023", "2022"))
	assert.True(t, Equal("2023", "2023"))
	assert.False(t, Equal("2023", "2024"))
}
