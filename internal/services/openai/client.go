// Package openai adapts github.com/sashabaranov/go-openai to the provider
// interface used for reply generation.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// Name is the provider name this client registers under.
const Name = "openai"

const defaultTimeout = 60 * time.Second

// Config captures the runtime settings for the OpenAI API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	TimeoutSeconds int
}

// Client issues chat completions through go-openai.
type Client struct {
	api         *goopenai.Client
	model       string
	temperature float32
}

// NewClient constructs a client. An empty BaseURL keeps the library default.
func NewClient(cfg Config) *Client {
	clientCfg := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &Client{
		api:         goopenai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: float32(cfg.Temperature),
	}
}

func (c *Client) Name() string { return Name }

func (c *Client) Model() string { return c.model }

// Complete sends the system instruction and user message and returns the
// first choice's content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, false)
}

// CompleteJSON requests a JSON object response at temperature 0.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, true)
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", errors.New("openai complete: system and user prompts required")
	}

	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.temperature,
	}
	if jsonMode {
		req.Temperature = 0
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", describeError(err)
	}
	for _, choice := range resp.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	finish := ""
	if len(resp.Choices) > 0 {
		finish = string(resp.Choices[0].FinishReason)
	}
	return "", fmt.Errorf("openai complete: empty content (finish_reason=%q)", finish)
}

func describeError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai complete: http %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai complete: http %d: %w", reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("openai complete: %w", err)
}
