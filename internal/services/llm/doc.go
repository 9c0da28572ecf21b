// Package llm provides a chat-completions client for OpenRouter and other
// OpenAI-compatible endpoints.
//
// It backs the "openrouter" provider: the session controller uses Complete to
// generate one reply per prompt variant, and the intent classifier uses
// CompleteJSON to ask the model for a category.
//
// # Configuration
//
// Requires api_key and model; base_url defaults to the OpenRouter endpoint.
// Referer and title are forwarded as the OpenRouter attribution headers.
//
// # Retry Behaviour
//
// The client retries HTTP 408/429/5xx responses, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s). The attempt
// count comes from retry_attempts; 1 disables retries. Context cancellation
// aborts retries immediately.
//
// DecodeLLMJSON tolerates code fences and chatter around a JSON payload, so
// callers can parse model output without repeating that cleanup.
package llm
