package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"askgreg/internal/catalog"
	"askgreg/internal/generator"
	"askgreg/internal/intent"
	"askgreg/internal/logging"
	"askgreg/internal/preference"
	"askgreg/internal/services"
)

// Submit processes a new question: it resolves the category, selects two
// variants, generates both replies concurrently and stores them as the
// session's pending selection. A failed side is returned with empty text and
// its error; the selection is created regardless.
func (c *Controller) Submit(ctx context.Context, id string, q Question) (Pending, error) {
	input := strings.TrimSpace(q.Input)
	if input == "" {
		return Pending{}, ErrEmptyInput
	}
	s, err := c.session(id)
	if err != nil {
		return Pending{}, err
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return Pending{}, ErrSelectionPending
	}
	s.state = StateAwaitingGeneration
	epoch := s.epoch
	s.mu.Unlock()

	pending, err := c.prepare(ctx, s, input, q)
	if err != nil {
		s.mu.Lock()
		if s.epoch == epoch {
			s.state = StateIdle
		}
		s.mu.Unlock()
		return Pending{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return Pending{}, ErrInterrupted
	}
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: input})
	s.pending = &pending
	s.state = StateAwaitingChoice
	return pending, nil
}

func (c *Controller) prepare(ctx context.Context, s *Session, input string, q Question) (Pending, error) {
	ctx = services.WithSessionID(ctx, s.id)
	cat, classification, err := c.resolveCategory(ctx, input, q.Category)
	if err != nil {
		return Pending{}, err
	}
	ctx = services.WithCategory(ctx, cat.ID)

	provider, err := c.resolveProvider(q.Provider)
	if err != nil {
		return Pending{}, err
	}

	pair, err := c.selectPair(cat, s.log.History())
	if err != nil {
		return Pending{}, err
	}

	pending := Pending{
		UserInput:      input,
		Category:       cat.ID,
		Provider:       provider,
		FirstVariant:   pair.First.ID,
		SecondVariant:  pair.Second.ID,
		Classification: classification,
	}

	var wg sync.WaitGroup
	var firstErr, secondErr error
	wg.Go(func() {
		pending.FirstText, firstErr = c.generate(ctx, provider, cat, pair.First, input)
	})
	wg.Go(func() {
		pending.SecondText, secondErr = c.generate(ctx, provider, cat, pair.Second, input)
	})
	wg.Wait()

	if firstErr != nil {
		pending.FirstError = firstErr.Error()
	}
	if secondErr != nil {
		pending.SecondError = secondErr.Error()
	}

	logging.WithContext(ctx, c.logger).Info("selection ready",
		logging.String(logging.FieldProvider, provider),
		logging.String("first_variant", pair.First.ID),
		logging.String("second_variant", pair.Second.ID),
		logging.Bool("first_failed", firstErr != nil),
		logging.Bool("second_failed", secondErr != nil),
	)
	return pending, nil
}

func (c *Controller) generate(ctx context.Context, provider string, cat catalog.Category, v catalog.Variant, input string) (string, error) {
	return c.generator.Generate(ctx, generator.Request{
		Provider:          provider,
		SystemInstruction: v.Template,
		UserInput:         input,
		Variant:           v.ID,
		Category:          cat.ID,
	})
}

// resolveCategory uses the requested category, or classifies the input when
// none was given.
func (c *Controller) resolveCategory(ctx context.Context, input, requested string) (catalog.Category, *intent.Result, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		cat, err := c.catalog.Category(requested)
		return cat, nil, err
	}
	if c.classifier == nil {
		return catalog.Category{}, nil, services.Wrap(services.ErrInvalidCategory, "session", "submit", "no category given", nil)
	}
	result, err := c.classifier.Classify(ctx, input)
	if err != nil {
		return catalog.Category{}, nil, err
	}
	if result.Category == intent.Unclassified {
		return catalog.Category{}, &result, services.Wrap(services.ErrInvalidCategory, "session", "submit",
			fmt.Sprintf("input could not be classified (%s)", result.Reason), nil)
	}
	cat, err := c.catalog.Category(result.Category)
	return cat, &result, err
}

func (c *Controller) resolveProvider(requested string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(requested))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(c.defaultProvider))
	}
	if name == "" {
		return "", services.Wrap(services.ErrConfiguration, "session", "submit", "no provider configured", nil)
	}
	if !c.generator.Has(name) {
		return "", services.Wrap(services.ErrValidation, "session", "submit",
			fmt.Sprintf("provider %q is not configured", name), nil)
	}
	return name, nil
}

// AskResult is the outcome of a one-shot Ask.
type AskResult struct {
	Category       string         `json:"category"`
	Variant        string         `json:"variant"`
	Provider       string         `json:"provider"`
	Text           string         `json:"text"`
	Classification *intent.Result `json:"classification,omitempty"`
}

// Ask answers a single question without a session: it resolves the category,
// picks one variant uniformly, generates the reply and logs it to the durable
// sink as if it had been chosen.
func (c *Controller) Ask(ctx context.Context, q Question) (AskResult, error) {
	input := strings.TrimSpace(q.Input)
	if input == "" {
		return AskResult{}, ErrEmptyInput
	}
	cat, classification, err := c.resolveCategory(ctx, input, q.Category)
	if err != nil {
		return AskResult{}, err
	}
	provider, err := c.resolveProvider(q.Provider)
	if err != nil {
		return AskResult{}, err
	}
	pair, err := c.selectPair(cat, nil)
	if err != nil {
		return AskResult{}, err
	}
	ctx = services.WithCategory(ctx, cat.ID)
	text, err := c.generate(ctx, provider, cat, pair.First, input)
	if err != nil {
		return AskResult{}, err
	}

	result := AskResult{Category: cat.ID, Variant: pair.First.ID, Provider: provider, Text: text, Classification: classification}
	entry := preference.Entry{
		Record: preference.Record{
			Question:      input,
			Category:      cat.ID,
			ChosenVariant: pair.First.ID,
			ChosenText:    text,
			Provider:      provider,
		},
		RecordedAt: c.now(),
	}
	if err := c.sink.Append(ctx, entry); err != nil {
		return result, &PersistError{Err: err}
	}
	return result, nil
}
