package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeGeneration()
	c.normalizeClassification()
	if err := c.normalizePreferences(); err != nil {
		return err
	}
	c.normalizeSession()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("ASKGREG_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Source = strings.ToLower(strings.TrimSpace(c.Catalog.Source))
	if c.Catalog.Source == "" {
		c.Catalog.Source = defaultCatalogSource
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	var err error
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	c.Catalog.DefaultCategory = strings.TrimSpace(c.Catalog.DefaultCategory)
	return nil
}

func (c *Config) normalizeProviders() {
	c.Providers.Default = strings.ToLower(strings.TrimSpace(c.Providers.Default))
	if c.Providers.Default == "" {
		c.Providers.Default = defaultProvider
	}
	normalizeProvider(&c.Providers.OpenRouter, "OPENROUTER_API_KEY")
	normalizeProvider(&c.Providers.OpenAI, "OPENAI_API_KEY")
	normalizeProvider(&c.Providers.Gemini, "GOOGLE_API_KEY", "GEMINI_API_KEY")
	if c.Providers.OpenRouter.BaseURL == "" {
		c.Providers.OpenRouter.BaseURL = defaultOpenRouterBaseURL
	}
	if c.Providers.OpenAI.Model == "" {
		c.Providers.OpenAI.Model = defaultOpenAIModel
	}
	if c.Providers.Gemini.Model == "" {
		c.Providers.Gemini.Model = defaultGeminiModel
	}
	if c.Providers.OpenRouter.Model == "" {
		c.Providers.OpenRouter.Model = defaultOpenRouterModel
	}
}

func normalizeProvider(p *Provider, envKeys ...string) {
	p.APIKey = strings.TrimSpace(p.APIKey)
	if p.APIKey == "" {
		for _, key := range envKeys {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				p.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.Model = strings.TrimSpace(p.Model)
	p.Referer = strings.TrimSpace(p.Referer)
	p.Title = strings.TrimSpace(p.Title)
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = defaultProviderTimeoutSeconds
	}
	if p.RetryAttempts <= 0 {
		p.RetryAttempts = 1
	}
}

func (c *Config) normalizeGeneration() {
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = defaultGenerationTimeoutSeconds
	}
	if c.Generation.RequestsPerMinute < 0 {
		c.Generation.RequestsPerMinute = 0
	}
}

func (c *Config) normalizeClassification() {
	c.Classification.Mode = strings.ToLower(strings.TrimSpace(c.Classification.Mode))
	if c.Classification.Mode == "" {
		c.Classification.Mode = defaultClassificationMode
	}
	c.Classification.Provider = strings.ToLower(strings.TrimSpace(c.Classification.Provider))
	if c.Classification.Provider == "" {
		c.Classification.Provider = c.Providers.Default
	}
	c.Classification.FallbackCategory = strings.TrimSpace(c.Classification.FallbackCategory)
	if c.Classification.FallbackCategory == "" {
		c.Classification.FallbackCategory = c.Catalog.DefaultCategory
	}
	rules := make([]ClassificationRule, 0, len(c.Classification.Rules))
	for _, rule := range c.Classification.Rules {
		category := strings.TrimSpace(rule.Category)
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if category == "" || len(keywords) == 0 {
			continue
		}
		rules = append(rules, ClassificationRule{Keywords: keywords, Category: category})
	}
	c.Classification.Rules = rules
}

func (c *Config) normalizePreferences() error {
	c.Preferences.Sink = strings.ToLower(strings.TrimSpace(c.Preferences.Sink))
	if c.Preferences.Sink == "" {
		c.Preferences.Sink = defaultPreferenceSink
	}
	c.Preferences.DatabaseURL = strings.TrimSpace(c.Preferences.DatabaseURL)
	if c.Preferences.DatabaseURL == "" {
		if value, ok := os.LookupEnv("ASKGREG_DATABASE_URL"); ok {
			c.Preferences.DatabaseURL = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Preferences.Path) != "" {
		var err error
		if c.Preferences.Path, err = expandPath(c.Preferences.Path); err != nil {
			return fmt.Errorf("preferences.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSession() {
	c.Session.TokenSecret = strings.TrimSpace(c.Session.TokenSecret)
	if c.Session.TokenSecret == "" {
		if value, ok := os.LookupEnv("ASKGREG_SESSION_SECRET"); ok {
			c.Session.TokenSecret = strings.TrimSpace(value)
		}
	}
	if c.Session.TokenTTLMinutes <= 0 {
		c.Session.TokenTTLMinutes = defaultSessionTokenTTLMinutes
	}
	origins := make([]string, 0, len(c.Session.AllowedOrigins))
	for _, origin := range c.Session.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.Session.AllowedOrigins = origins
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
