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
	"askgreg/internal/services/llm"
)

const classificationPrompt = `You route customer and student questions to a category.
Choose exactly one category id from this list:
%s
Respond with JSON only, in the form {"category": "<id>", "confidence": <number between 0 and 1>, "reason": "<short reason>"}.
If none fits, use "unknown" with confidence 0.`

// LLM asks a provider to classify the input. Calls go through the generator
// so they share its per-call timeout and rate limit.
type LLM struct {
	gen       *generator.Generator
	provider  string
	index     index
	prompt    string
	fallback  string
	threshold float64
	logger    *slog.Logger
}

// NewLLM builds an LLM classifier over the catalog's categories.
func NewLLM(gen *generator.Generator, provider string, cat *catalog.Catalog, fallback string, threshold float64, logger *slog.Logger) *LLM {
	var lines []string
	for _, c := range cat.Describe() {
		line := "- " + c.ID
		if c.Description != "" {
			line += ": " + c.Description
		}
		lines = append(lines, line)
	}
	return &LLM{
		gen:       gen,
		provider:  provider,
		index:     newIndex(cat),
		prompt:    fmt.Sprintf(classificationPrompt, strings.Join(lines, "\n")),
		fallback:  fallback,
		threshold: threshold,
		logger:    logger,
	}
}

func (l *LLM) Mode() string { return config.ClassifyLLM }

type llmAnswer struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Classify never returns a provider or parse error: those map to the fallback
// with the reason recorded.
func (l *LLM) Classify(ctx context.Context, text string) (Result, error) {
	trimmed, err := requireText(text)
	if err != nil {
		return Result{}, err
	}

	raw, err := l.gen.Generate(ctx, generator.Request{
		Provider:          l.provider,
		SystemInstruction: l.prompt,
		UserInput:         trimmed,
		JSON:              true,
	})
	if err != nil {
		return l.fallbackWith(ctx, "provider error: "+err.Error()), nil
	}

	var answer llmAnswer
	if err := llm.DecodeLLMJSON(raw, &answer); err != nil {
		return l.fallbackWith(ctx, "unparsable answer: "+err.Error()), nil
	}
	id, ok := l.index.lookup(answer.Category)
	if !ok {
		return l.fallbackWith(ctx, fmt.Sprintf("unknown category %q", answer.Category)), nil
	}
	confidence := min(max(answer.Confidence, 0), 1)
	if confidence < l.threshold {
		return l.fallbackWith(ctx, fmt.Sprintf("confidence %.2f below threshold %.2f for %q", confidence, l.threshold, id)), nil
	}
	reason := strings.TrimSpace(answer.Reason)
	if reason == "" {
		reason = "model choice"
	}
	return Result{Category: id, Mode: config.ClassifyLLM, Confidence: confidence, Reason: reason}, nil
}

func (l *LLM) fallbackWith(ctx context.Context, reason string) Result {
	logging.WithContext(ctx, l.logger).Info("classification fell back",
		logging.String(logging.FieldProvider, l.provider),
		logging.String("reason", reason),
		logging.String("fallback", l.fallback),
	)
	return fallbackResult(config.ClassifyLLM, l.fallback, reason)
}
