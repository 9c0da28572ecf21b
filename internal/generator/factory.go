package generator

import (
	"context"
	"log/slog"
	"time"

	"askgreg/internal/config"
	"askgreg/internal/logging"
	"askgreg/internal/services/gemini"
	"askgreg/internal/services/llm"
	"askgreg/internal/services/openai"
)

// FromConfig builds a Generator with a client for every provider that has an
// API key. Providers without keys are left unregistered so requests for them
// fail with a configuration error.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Generator {
	g := New(Options{
		Timeout:           time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
		RequestsPerMinute: cfg.Generation.RequestsPerMinute,
		Logger:            logger,
	})

	if p := cfg.Providers.OpenRouter; p.APIKey != "" {
		g.Register(llm.NewClient(llm.Config{
			APIKey:         p.APIKey,
			BaseURL:        p.BaseURL,
			Model:          p.Model,
			Referer:        p.Referer,
			Title:          p.Title,
			Temperature:    p.Temperature,
			TimeoutSeconds: p.TimeoutSeconds,
		}, llm.WithRetryMaxAttempts(p.RetryAttempts)))
	}
	if p := cfg.Providers.OpenAI; p.APIKey != "" {
		g.Register(openai.NewClient(openai.Config{
			APIKey:         p.APIKey,
			BaseURL:        p.BaseURL,
			Model:          p.Model,
			Temperature:    p.Temperature,
			TimeoutSeconds: p.TimeoutSeconds,
		}))
	}
	if p := cfg.Providers.Gemini; p.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey:         p.APIKey,
			BaseURL:        p.BaseURL,
			Model:          p.Model,
			Temperature:    p.Temperature,
			TimeoutSeconds: p.TimeoutSeconds,
		})
		if err != nil {
			logging.WarnWithContext(g.logger, "gemini provider unavailable", "provider_init_failed",
				logging.String(logging.FieldProvider, gemini.Name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check providers.gemini settings"),
				logging.String(logging.FieldImpact, "questions naming gemini are rejected"),
			)
		} else {
			g.Register(client)
		}
	}
	return g
}
