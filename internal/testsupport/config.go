package testsupport

import (
	"path/filepath"
	"testing"

	"askgreg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Preferences default to the discard sink and no provider has a key.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Catalog.Path = filepath.Join(base, "prompts.yaml")
	cfgVal.Preferences.Sink = config.SinkNone
	cfgVal.Session.TokenSecret = "test-secret"
	cfgVal.Generation.Seed = 42

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSink selects the preference sink; file sinks write under the temp dir.
func WithSink(sink string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preferences.Sink = sink
		b.cfg.Preferences.Path = ""
	}
}

// WithDefaultProvider sets the default provider and gives it a dummy key.
func WithDefaultProvider(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.Default = name
		switch name {
		case config.ProviderOpenRouter:
			b.cfg.Providers.OpenRouter.APIKey = "test"
		case config.ProviderOpenAI:
			b.cfg.Providers.OpenAI.APIKey = "test"
		case config.ProviderGemini:
			b.cfg.Providers.Gemini.APIKey = "test"
		default:
			b.t.Fatalf("unknown provider %q", name)
		}
	}
}

// WithClassification sets the classification mode.
func WithClassification(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classification.Mode = mode
	}
}

// WithAPIToken enables bearer authentication on the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
