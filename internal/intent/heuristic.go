package intent

import (
	"context"
	"fmt"
	"strings"

	"askgreg/internal/catalog"
	"askgreg/internal/config"
)

type rule struct {
	keywords []string
	category string
}

// Heuristic applies keyword rules in order; the first rule with a keyword
// contained in the input wins.
type Heuristic struct {
	rules    []rule
	fallback string
}

// NewHeuristic compiles rules against the catalog. Rules naming a category the
// catalog does not have are dropped.
func NewHeuristic(cat *catalog.Catalog, rules []config.ClassificationRule, fallback string) *Heuristic {
	idx := newIndex(cat)
	h := &Heuristic{fallback: fallback}
	for _, r := range rules {
		id, ok := idx.lookup(r.Category)
		if !ok {
			continue
		}
		compiled := rule{category: id}
		for _, kw := range r.Keywords {
			if folded := fold(kw); folded != "" {
				compiled.keywords = append(compiled.keywords, folded)
			}
		}
		if len(compiled.keywords) > 0 {
			h.rules = append(h.rules, compiled)
		}
	}
	return h
}

func (h *Heuristic) Mode() string { return config.ClassifyHeuristic }

func (h *Heuristic) Classify(_ context.Context, text string) (Result, error) {
	trimmed, err := requireText(text)
	if err != nil {
		return Result{}, err
	}
	folded := fold(trimmed)
	for _, r := range h.rules {
		for _, kw := range r.keywords {
			if strings.Contains(folded, kw) {
				return Result{
					Category:   r.category,
					Mode:       config.ClassifyHeuristic,
					Confidence: 1,
					Reason:     fmt.Sprintf("matched keyword %q", kw),
				}, nil
			}
		}
	}
	return fallbackResult(config.ClassifyHeuristic, h.fallback, "no keyword matched"), nil
}
