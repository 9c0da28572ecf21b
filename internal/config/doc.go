// Package config loads, normalizes, and validates askgreg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY, GOOGLE_API_KEY, and ASKGREG_DATABASE_URL. The Config type
// centralizes every knob the server and CLI need: where prompts come from,
// which providers answer, how intent is classified, and where preference
// records are written.
//
// Every error returned by Load wraps services.ErrConfiguration; configuration
// problems are fatal at startup.
package config
