// Package intent picks a prompt category for free-form user input.
//
// Three modes are available: "none" never classifies, "heuristic" applies
// ordered keyword rules, and "llm" asks a provider for a category and
// confidence. Whatever the model says, the result is always either a category
// that exists in the catalog, the configured fallback, or Unclassified.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"askgreg/internal/catalog"
	"askgreg/internal/config"
	"askgreg/internal/generator"
	"askgreg/internal/logging"
	"askgreg/internal/services"
)

// Unclassified is the empty category id returned when nothing applies.
const Unclassified = ""

// Result describes a classification.
type Result struct {
	Category   string  `json:"category"`
	Mode       string  `json:"mode"`
	Confidence float64 `json:"confidence,omitempty"`
	Reason     string  `json:"reason"`
	// Fallback is true when Category came from the fallback rather than a match.
	Fallback bool `json:"fallback"`
}

// Classifier maps user input to a category.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
	Mode() string
}

// New builds the classifier selected by cfg.Classification.Mode. The llm mode
// sends its requests through gen.
func New(cfg *config.Config, cat *catalog.Catalog, gen *generator.Generator, logger *slog.Logger) (Classifier, error) {
	c := cfg.Classification
	fallback := resolveFallback(cat, c.FallbackCategory)
	logger = logging.NewComponentLogger(logger, "intent")

	switch c.Mode {
	case config.ClassifyNone, "":
		return None{}, nil
	case config.ClassifyHeuristic:
		return NewHeuristic(cat, c.Rules, fallback), nil
	case config.ClassifyLLM:
		if gen == nil {
			return nil, services.Wrap(services.ErrConfiguration, "intent", "build", "llm mode requires a generator", nil)
		}
		if !gen.Has(c.Provider) {
			return nil, services.Wrap(services.ErrConfiguration, "intent", "build",
				fmt.Sprintf("classification provider %q is not configured", c.Provider), nil)
		}
		return NewLLM(gen, c.Provider, cat, fallback, c.ConfidenceThreshold, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "intent", "build",
			fmt.Sprintf("unsupported classification mode %q", c.Mode), nil)
	}
}

// resolveFallback returns the catalog's spelling of the fallback category, or
// Unclassified when it is not in the catalog.
func resolveFallback(cat *catalog.Catalog, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" || cat == nil {
		return Unclassified
	}
	if id, ok := newIndex(cat).lookup(fallback); ok {
		return id
	}
	return Unclassified
}

func fallbackResult(mode, fallback, reason string) Result {
	return Result{Category: fallback, Mode: mode, Reason: reason, Fallback: true}
}

func requireText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "intent", "classify", "text is empty", nil)
	}
	return trimmed, nil
}

// None never classifies.
type None struct{}

func (None) Mode() string { return config.ClassifyNone }

func (None) Classify(_ context.Context, text string) (Result, error) {
	if _, err := requireText(text); err != nil {
		return Result{}, err
	}
	return Result{Category: Unclassified, Mode: config.ClassifyNone, Reason: "classification disabled"}, nil
}
