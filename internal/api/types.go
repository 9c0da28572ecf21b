package api

import (
	"askgreg/internal/catalog"
	"askgreg/internal/preference"
	"askgreg/internal/preference/sink"
	"askgreg/internal/session"
)

// HealthResponse reports liveness and the serving configuration.
type HealthResponse struct {
	Status          string   `json:"status"`
	Providers       []string `json:"providers"`
	DefaultProvider string   `json:"default_provider"`
	Sessions        int      `json:"sessions"`
}

// CategoriesResponse lists the prompt catalog.
type CategoriesResponse struct {
	Categories []catalog.Category `json:"categories"`
}

// CreateSessionResponse carries the new session handle.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// QuestionRequest is the body of POST /api/sessions/{id}/questions.
type QuestionRequest struct {
	Input    string `json:"input"`
	Category string `json:"category,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// ChoiceRequest is the body of POST /api/sessions/{id}/choice.
type ChoiceRequest struct {
	Side string `json:"side"`
}

// ChoiceResponse echoes the recorded preference.
type ChoiceResponse struct {
	Record  preference.Record `json:"record"`
	Warning string            `json:"warning,omitempty"`
}

// PreferencesResponse lists a session's in-memory preference log.
type PreferencesResponse struct {
	Records []preference.Record `json:"records"`
	// Stats holds per-category variant pick counts when ?stats=1 is given.
	Stats map[string]map[string]int `json:"stats,omitempty"`
}

// SessionResponse wraps a snapshot.
type SessionResponse struct {
	Session session.Snapshot `json:"session"`
}

// StatsResponse lists durable per-variant pick counts.
type StatsResponse struct {
	Stats []sink.Stat `json:"stats"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
