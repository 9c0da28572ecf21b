package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"askgreg/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Catalog selects where prompt variants come from.
type Catalog struct {
	// Source is "inline" (built-in variants) or "external" (YAML file at Path).
	Source          string `toml:"source"`
	Path            string `toml:"path"`
	DefaultCategory string `toml:"default_category"`
}

// Provider contains connection settings for a single LLM provider.
type Provider struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RetryAttempts  int     `toml:"retry_attempts"`
}

// Providers groups every supported provider plus the default choice.
type Providers struct {
	Default    string   `toml:"default"`
	OpenRouter Provider `toml:"openrouter"`
	OpenAI     Provider `toml:"openai"`
	Gemini     Provider `toml:"gemini"`
}

// Generation controls how replies are requested from providers.
type Generation struct {
	// TimeoutSeconds bounds a single provider call, including transport retries.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RequestsPerMinute throttles each provider client-side. Zero disables throttling.
	RequestsPerMinute int `toml:"requests_per_minute"`
	// Seed fixes the variant selection random source. Zero seeds from the clock.
	Seed uint64 `toml:"seed"`
}

// ClassificationRule maps any of a set of keywords to a category.
type ClassificationRule struct {
	Keywords []string `toml:"keywords"`
	Category string   `toml:"category"`
}

// Classification contains intent classification settings.
type Classification struct {
	// Mode is "none", "heuristic", or "llm".
	Mode                string               `toml:"mode"`
	Provider            string               `toml:"provider"`
	FallbackCategory    string               `toml:"fallback_category"`
	ConfidenceThreshold float64              `toml:"confidence_threshold"`
	Rules               []ClassificationRule `toml:"rules"`
}

// Preferences selects the durable sink that receives preference records.
type Preferences struct {
	// Sink is "none", "csv", "jsonl", "sqlite", or "postgres".
	Sink        string `toml:"sink"`
	Path        string `toml:"path"`
	DatabaseURL string `toml:"database_url"`
}

// Session contains HTTP session token settings.
type Session struct {
	TokenSecret     string   `toml:"token_secret"`
	TokenTTLMinutes int      `toml:"token_ttl_minutes"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for askgreg.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Catalog: inline or external prompt variants
//   - Providers: LLM provider credentials and models
//   - Generation: per-call timeout, throttling, selection seed
//   - Classification: intent classification mode and rules
//   - Preferences: durable preference sink
//   - Session: HTTP session tokens and CORS origins
//   - Logging: log format and level
type Config struct {
	Paths          Paths          `toml:"paths"`
	Catalog        Catalog        `toml:"catalog"`
	Providers      Providers      `toml:"providers"`
	Generation     Generation     `toml:"generation"`
	Classification Classification `toml:"classification"`
	Preferences    Preferences    `toml:"preferences"`
	Session        Session        `toml:"session"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Failures are tagged with services.ErrConfiguration.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, configError(err)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, configError(fmt.Errorf("open config: %w", err))
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, configError(fmt.Errorf("parse config: %w", err))
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, configError(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, configError(err)
	}

	return &cfg, resolvedPath, exists, nil
}

func configError(err error) error {
	if err == nil || errors.Is(err, services.ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", services.ErrConfiguration, err)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("askgreg.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Provider returns the settings for the named provider.
func (c *Config) Provider(name string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderOpenRouter:
		return c.Providers.OpenRouter, true
	case ProviderOpenAI:
		return c.Providers.OpenAI, true
	case ProviderGemini:
		return c.Providers.Gemini, true
	default:
		return Provider{}, false
	}
}

// PreferencePath returns the file used by file-backed preference sinks.
func (c *Config) PreferencePath() string {
	if strings.TrimSpace(c.Preferences.Path) != "" {
		return c.Preferences.Path
	}
	switch c.Preferences.Sink {
	case SinkCSV:
		return filepath.Join(c.Paths.DataDir, "preferences.csv")
	case SinkJSONL:
		return filepath.Join(c.Paths.DataDir, "preferences.jsonl")
	case SinkSQLite:
		return filepath.Join(c.Paths.DataDir, "preferences.db")
	default:
		return ""
	}
}
