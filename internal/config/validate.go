package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateClassification(); err != nil {
		return err
	}
	if err := c.validatePreferences(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case CatalogInline, CatalogExternal:
	default:
		return fmt.Errorf("catalog.source: unsupported value %q (want inline or external)", c.Catalog.Source)
	}
	if c.Catalog.Source == CatalogExternal && strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path must be set when catalog.source is external")
	}
	return nil
}

func (c *Config) validateProviders() error {
	if _, ok := c.Provider(c.Providers.Default); !ok {
		return fmt.Errorf("providers.default: unsupported provider %q", c.Providers.Default)
	}
	for name, p := range map[string]Provider{
		ProviderOpenRouter: c.Providers.OpenRouter,
		ProviderOpenAI:     c.Providers.OpenAI,
		ProviderGemini:     c.Providers.Gemini,
	} {
		if p.Temperature < 0 || p.Temperature > 2 {
			return fmt.Errorf("providers.%s.temperature must be between 0 and 2", name)
		}
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.TimeoutSeconds <= 0 {
		return errors.New("generation.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateClassification() error {
	switch c.Classification.Mode {
	case ClassifyNone, ClassifyHeuristic, ClassifyLLM:
	default:
		return fmt.Errorf("classification.mode: unsupported value %q (want none, heuristic, or llm)", c.Classification.Mode)
	}
	if c.Classification.Mode == ClassifyLLM {
		if _, ok := c.Provider(c.Classification.Provider); !ok {
			return fmt.Errorf("classification.provider: unsupported provider %q", c.Classification.Provider)
		}
	}
	if c.Classification.ConfidenceThreshold < 0 || c.Classification.ConfidenceThreshold > 1 {
		return errors.New("classification.confidence_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validatePreferences() error {
	switch c.Preferences.Sink {
	case SinkNone, SinkCSV, SinkJSONL, SinkSQLite:
	case SinkPostgres:
		if c.Preferences.DatabaseURL == "" {
			return errors.New("preferences.database_url must be set when preferences.sink is postgres (or set ASKGREG_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("preferences.sink: unsupported value %q", c.Preferences.Sink)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
