package search

import (
	"strings"

	"github.com/meghashyamc/schoolfinder/db/catalog"
)

// contains reports whether needle, already folded, occurs in haystack once
// haystack is folded. An empty needle matches everything.
func contains(haystack string, foldedNeedle string) bool {
	if foldedNeedle == "" {
		return true
	}

	return strings.Contains(catalog.Fold(haystack), foldedNeedle)
}

// canonicalOwnership folds value and collapses known synonyms ("privée",
// "prive", "private") to their canonical spelling. Unknown values are
// returned folded so they can still be compared exactly.
func canonicalOwnership(value string) string {
	if ownership, err := catalog.ParseOwnershipType(value); err == nil {
		return string(ownership)
	}

	return catalog.Fold(value)
}
