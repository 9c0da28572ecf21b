// Package services defines shared utilities consumed by the interaction
// pipeline and the external LLM integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, categories, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     invalid category, generation failure, configuration error, and so on.
//
// Provider clients live in subpackages (llm, openai, gemini); they return
// plain errors and the generator tags them with ErrGenerationFailed.
package services
