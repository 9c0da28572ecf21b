package selector

import (
	"slices"
	"strings"

	"askgreg/internal/catalog"
)

// sortedVariants returns the variants in id order so a seeded source always
// maps to the same picks.
func sortedVariants(category catalog.Category) []catalog.Variant {
	variants := slices.Clone(category.Variants)
	slices.SortFunc(variants, func(a, b catalog.Variant) int { return strings.Compare(a.ID, b.ID) })
	return variants
}
