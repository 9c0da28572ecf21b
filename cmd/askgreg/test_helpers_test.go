package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath  string
	catalogPath string
	baseDir     string
	provider    *httptest.Server
}

// setupCLITestEnv writes a config that points the openai provider at a local
// fake, classifies heuristically and records preferences in sqlite.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY", "ASKGREG_DATABASE_URL", "ASKGREG_API_TOKEN", "ASKGREG_SESSION_SECRET"} {
		t.Setenv(key, "")
	}

	provider := httptest.NewServer(http.HandlerFunc(fakeChatCompletion(t)))
	t.Cleanup(provider.Close)

	env := &cliTestEnv{
		configPath:  filepath.Join(base, "askgreg.toml"),
		catalogPath: filepath.Join(base, "prompts.yaml"),
		baseDir:     base,
		provider:    provider,
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"

[catalog]
path = %q

[providers]
default = "openai"

[providers.openai]
api_key = "sk-test"
base_url = %q

[generation]
seed = 7

[classification]
mode = "heuristic"
fallback_category = "general"

[preferences]
sink = "sqlite"

[logging]
level = "error"
`,
		filepath.Join(env.baseDir, "data"),
		filepath.Join(env.baseDir, "logs"),
		env.catalogPath,
		env.provider.URL+"/v1",
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// fakeChatCompletion answers with "reply to <first words of the system prompt>".
func fakeChatCompletion(t *testing.T) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected provider path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode provider request: %v", err)
		}
		system := ""
		for _, m := range req.Messages {
			if m.Role == "system" {
				system = m.Content
			}
		}
		words := strings.Fields(system)
		if len(words) > 6 {
			words = words[:6]
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": "reply to " + strings.Join(words, " ")},
			}},
		})
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
