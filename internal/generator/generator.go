package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"askgreg/internal/logging"
	"askgreg/internal/services"
)

// Provider is an LLM backend able to answer one system+user exchange.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// JSONProvider is implemented by providers that can be asked for a JSON-only
// answer. Requests with JSON set prefer it when available.
type JSONProvider interface {
	Provider
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Request names what to generate. Variant and Category are carried for error
// context and logs only.
type Request struct {
	Provider          string
	SystemInstruction string
	UserInput         string
	Variant           string
	Category          string
	// JSON asks for a JSON-only answer from providers that support it.
	JSON bool
}

// Error reports a failed generation together with its context.
type Error struct {
	Provider string
	Variant  string
	Category string
	Err      error
}

func (e *Error) Error() string {
	parts := []string{"generation failed"}
	if e.Provider != "" {
		parts = append(parts, "provider="+e.Provider)
	}
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("category=%q", e.Category))
	}
	if e.Variant != "" {
		parts = append(parts, "variant="+e.Variant)
	}
	msg := strings.Join(parts, " ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrGenerationFailed}
	}
	return []error{services.ErrGenerationFailed, e.Err}
}

// Options tunes a Generator.
type Options struct {
	// Timeout bounds each call. Zero means no generator-level deadline.
	Timeout time.Duration
	// RequestsPerMinute throttles each provider independently. Zero disables.
	RequestsPerMinute int
	Logger            *slog.Logger
}

// Generator dispatches generation requests to named providers.
type Generator struct {
	mu        sync.RWMutex
	providers map[string]Provider
	limiters  map[string]*rate.Limiter
	opts      Options
	logger    *slog.Logger
}

// New returns a Generator with no providers registered.
func New(opts Options) *Generator {
	return &Generator{
		providers: make(map[string]Provider),
		limiters:  make(map[string]*rate.Limiter),
		opts:      opts,
		logger:    logging.NewComponentLogger(opts.Logger, "generator"),
	}
}

// Register adds or replaces a provider under its lower-cased name.
func (g *Generator) Register(p Provider) {
	if p == nil {
		return
	}
	name := normalizeName(p.Name())
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers[name] = p
	if g.opts.RequestsPerMinute > 0 {
		perSecond := rate.Limit(float64(g.opts.RequestsPerMinute) / 60)
		g.limiters[name] = rate.NewLimiter(perSecond, max(1, g.opts.RequestsPerMinute/60))
	}
}

// Providers lists registered provider names in sorted order.
func (g *Generator) Providers() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Provider returns the registered provider with the given name.
func (g *Generator) Provider(name string) (Provider, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.providers[normalizeName(name)]
	return p, ok
}

// Timeout reports the per-call deadline. Zero means none.
func (g *Generator) Timeout() time.Duration { return g.opts.Timeout }

// Has reports whether a provider is registered.
func (g *Generator) Has(name string) bool {
	_, ok := g.Provider(name)
	return ok
}

// Generate asks the named provider for a reply. Every failure is a *Error.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	name := normalizeName(req.Provider)
	fail := func(err error) error {
		return &Error{Provider: name, Variant: req.Variant, Category: req.Category, Err: err}
	}

	provider, ok := g.Provider(name)
	if !ok {
		return "", fail(services.Wrap(services.ErrConfiguration, "generator", "lookup",
			fmt.Sprintf("provider %q is not configured", req.Provider), nil))
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	g.mu.RLock()
	limiter := g.limiters[name]
	g.mu.RUnlock()
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return "", fail(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	started := time.Now()
	var text string
	var err error
	if jp, ok := provider.(JSONProvider); ok && req.JSON {
		text, err = jp.CompleteJSON(ctx, req.SystemInstruction, req.UserInput)
	} else {
		text, err = provider.Complete(ctx, req.SystemInstruction, req.UserInput)
	}
	elapsed := time.Since(started)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("provider returned empty text")
	}
	if err != nil {
		impact := "this side of the comparison is left empty"
		if req.Variant == "" {
			impact = "the caller falls back to its default"
		}
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "generation failed", "generation_failed",
			logging.String(logging.FieldProvider, name),
			logging.String(logging.FieldVariant, req.Variant),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check provider credentials, quota and network"),
			logging.String(logging.FieldImpact, impact),
		)
		return "", fail(err)
	}
	g.logger.Debug("generation complete",
		logging.String(logging.FieldProvider, name),
		logging.String(logging.FieldVariant, req.Variant),
		logging.Duration("elapsed", elapsed),
		logging.Int("chars", len(text)),
	)
	return text, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
