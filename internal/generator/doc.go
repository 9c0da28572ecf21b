// Package generator turns a (provider, system instruction, user input) triple
// into reply text.
//
// A Generator holds the configured providers by name. Every call runs under a
// per-call timeout and an optional per-provider rate limit; any failure,
// including an unknown provider, comes back as a *Error that matches
// services.ErrGenerationFailed. The generator itself never retries: a failed
// call leaves that side of the comparison empty. FromConfig registers the
// openrouter, openai and gemini clients for every provider that has an API key.
package generator
