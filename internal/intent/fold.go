package intent

import (
	"strings"

	"golang.org/x/text/cases"

	"askgreg/internal/catalog"
)

// fold case-folds s for caseless comparison. A Caser is not safe for
// concurrent use, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// index resolves category ids case-insensitively.
type index map[string]string

func newIndex(cat *catalog.Catalog) index {
	idx := index{}
	for _, id := range cat.Categories() {
		idx[fold(id)] = id
	}
	return idx
}

func (i index) lookup(name string) (string, bool) {
	id, ok := i[fold(name)]
	return id, ok
}
