// Package gemini adapts google.golang.org/genai to the provider interface
// used for reply generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Name is the provider name this client registers under.
const Name = "gemini"

const (
	defaultModel      = "gemini-1.5-flash"
	defaultAPIVersion = "v1beta"
	defaultTimeout    = 60 * time.Second
	jsonMIMEType      = "application/json"
)

// Config captures the runtime settings for the Gemini API. BaseURL is the
// service root; an empty value keeps the SDK default endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	TimeoutSeconds int
}

// Client issues generateContent requests through the genai SDK.
type Client struct {
	api         *genai.Client
	model       string
	temperature float32
}

// StatusError is returned when the API answers with an error status.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini generate: http %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini generate: http %d: %s", e.StatusCode, e.Message)
}

// NewClient constructs a client, filling unset fields with defaults.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("gemini client: api key required")
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	httpOptions := genai.HTTPOptions{APIVersion: defaultAPIVersion}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		httpOptions.BaseURL = strings.TrimRight(base, "/") + "/"
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{api: api, model: model, temperature: float32(cfg.Temperature)}, nil
}

func (c *Client) Name() string { return Name }

func (c *Client) Model() string { return c.model }

// Complete sends the system instruction and user message and returns the
// concatenated text parts of the first non-empty candidate.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.generate(ctx, systemPrompt, userPrompt, c.temperature, "")
}

// CompleteJSON asks for an application/json response at temperature 0.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.generate(ctx, systemPrompt, userPrompt, 0, jsonMIMEType)
}

func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32, mime string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", errors.New("gemini generate: system and user prompts required")
	}

	resp, err := c.api.Models.GenerateContent(ctx, c.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(temperature),
			ResponseMIMEType:  mime,
		},
	)
	if err != nil {
		return "", describeError(err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini generate: prompt blocked (%s)", resp.PromptFeedback.BlockReason)
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	finish := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		finish = string(resp.Candidates[0].FinishReason)
	}
	return "", fmt.Errorf("gemini generate: empty content (finish_reason=%q)", finish)
}

func describeError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini generate: %w", err)
}
