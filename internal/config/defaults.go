package config

// Provider names accepted by providers.default and classification.provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

// Preference sink kinds.
const (
	SinkNone     = "none"
	SinkCSV      = "csv"
	SinkJSONL    = "jsonl"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

// Catalog sources.
const (
	CatalogInline   = "inline"
	CatalogExternal = "external"
)

// Classification modes.
const (
	ClassifyNone      = "none"
	ClassifyHeuristic = "heuristic"
	ClassifyLLM       = "llm"
)

const (
	defaultConfigPath                 = "~/.config/askgreg/config.toml"
	defaultDataDir                    = "~/.local/share/askgreg"
	defaultLogDir                     = "~/.local/share/askgreg/logs"
	defaultAPIBind                    = "127.0.0.1:7488"
	defaultCatalogPath                = "~/.config/askgreg/prompts.yaml"
	defaultCategory                   = "General Questions"
	defaultProvider                   = ProviderGemini
	defaultOpenRouterBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel            = "google/gemini-2.0-flash-001"
	defaultOpenRouterReferer          = "https://github.com/askgreg/askgreg"
	defaultOpenRouterTitle            = "Ask Greg"
	defaultOpenAIModel                = "gpt-4o-mini"
	defaultGeminiModel                = "gemini-1.5-flash"
	defaultTemperature                = 0.7
	defaultProviderTimeoutSeconds     = 60
	defaultRetryAttempts              = 3
	defaultGenerationTimeoutSeconds   = 60
	defaultClassificationThreshold    = 0.5
	defaultSessionTokenTTLMinutes     = 24 * 60
	defaultLogFormat                  = "console"
	defaultLogLevel                   = "info"
	defaultPreferenceSink             = SinkSQLite
	defaultClassificationMode         = ClassifyNone
	defaultCatalogSource              = CatalogInline
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Catalog: Catalog{
			Source:          defaultCatalogSource,
			Path:            defaultCatalogPath,
			DefaultCategory: defaultCategory,
		},
		Providers: Providers{
			Default: defaultProvider,
			OpenRouter: Provider{
				BaseURL:        defaultOpenRouterBaseURL,
				Model:          defaultOpenRouterModel,
				Referer:        defaultOpenRouterReferer,
				Title:          defaultOpenRouterTitle,
				Temperature:    defaultTemperature,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
				RetryAttempts:  defaultRetryAttempts,
			},
			OpenAI: Provider{
				Model:          defaultOpenAIModel,
				Temperature:    defaultTemperature,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
			},
			Gemini: Provider{
				Model:          defaultGeminiModel,
				Temperature:    defaultTemperature,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
			},
		},
		Generation: Generation{
			TimeoutSeconds: defaultGenerationTimeoutSeconds,
		},
		Classification: Classification{
			Mode:                defaultClassificationMode,
			ConfidenceThreshold: defaultClassificationThreshold,
			Rules:               DefaultClassificationRules(),
		},
		Preferences: Preferences{
			Sink: defaultPreferenceSink,
		},
		Session: Session{
			TokenTTLMinutes: defaultSessionTokenTTLMinutes,
			AllowedOrigins:  []string{"*"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultClassificationRules returns the customer-support keyword rules used
// when none are configured.
func DefaultClassificationRules() []ClassificationRule {
	return []ClassificationRule{
		{Keywords: []string{"return", "refund"}, Category: "returns"},
		{Keywords: []string{"price", "specs"}, Category: "product_info"},
	}
}
