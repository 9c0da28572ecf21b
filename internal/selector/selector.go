// Package selector picks the two prompt variants shown for a question.
//
// Selection favours the variants people have picked most often in the
// category: the first slot is drawn from the most-picked tier, the second
// from everything else.
package selector

import (
	"fmt"

	"askgreg/internal/catalog"
	"askgreg/internal/preference"
	"askgreg/internal/services"
)

// Source is the random source used for tie-breaking. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Pair is the variants chosen for the left and right slots.
type Pair struct {
	First  catalog.Variant
	Second catalog.Variant
}

// Counts returns how often each variant of the category was the chosen side.
// Every variant is present in the result, including those never picked.
func Counts(category catalog.Category, history []preference.Record) map[string]int {
	counts := make(map[string]int, len(category.Variants))
	for _, v := range category.Variants {
		counts[v.ID] = 0
	}
	for _, r := range history {
		if r.Category != category.ID {
			continue
		}
		if _, ok := counts[r.ChosenVariant]; ok {
			counts[r.ChosenVariant]++
		}
	}
	return counts
}

// SelectPair picks two variants. First is uniform over the variants with the
// highest pick count; Second is uniform over the remaining variants, or
// equals First when the category has only one variant.
func SelectPair(category catalog.Category, history []preference.Record, rng Source) (Pair, error) {
	if len(category.Variants) == 0 {
		return Pair{}, services.Wrap(services.ErrInvalidCategory, "selector", "select pair",
			fmt.Sprintf("category %q has no variants", category.ID), nil)
	}
	if rng == nil {
		return Pair{}, services.Wrap(services.ErrConfiguration, "selector", "select pair", "random source is nil", nil)
	}

	variants := sortedVariants(category)
	counts := Counts(category, history)

	maxCount := 0
	for _, v := range variants {
		maxCount = max(maxCount, counts[v.ID])
	}
	topTier := make([]catalog.Variant, 0, len(variants))
	for _, v := range variants {
		if counts[v.ID] == maxCount {
			topTier = append(topTier, v)
		}
	}
	first := topTier[rng.IntN(len(topTier))]

	remaining := make([]catalog.Variant, 0, len(variants)-1)
	for _, v := range variants {
		if v.ID != first.ID {
			remaining = append(remaining, v)
		}
	}
	second := first
	if len(remaining) > 0 {
		second = remaining[rng.IntN(len(remaining))]
	}
	return Pair{First: first, Second: second}, nil
}
