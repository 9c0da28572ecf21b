package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"askgreg/internal/logging"
	"askgreg/internal/preference"
	"askgreg/internal/services"
	"askgreg/internal/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		Providers:       s.controller.Providers(),
		DefaultProvider: s.controller.DefaultProvider(),
		Sessions:        s.controller.Len(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, CategoriesResponse{Categories: s.controller.Catalog().Describe()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.querier == nil {
		s.writeError(w, http.StatusNotFound, "preference sink does not support queries")
		return
	}
	stats, err := s.querier.Stats(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StatsResponse{Stats: stats})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.controller.Open()
	token, err := s.tokens.issue(id)
	if err != nil {
		_ = s.controller.Close(id)
		s.writeFailure(w, r, err)
		return
	}
	logging.WithContext(services.WithSessionID(r.Context(), id), s.logger).Info("session created")
	s.writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: id, Token: token})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.controller.Snapshot(id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: snap})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.controller.Close(id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request, id string) {
	var req QuestionRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	// Generation outlives a disconnected client; only the per-call timeout
	// and shutdown bound it.
	ctx := context.WithoutCancel(r.Context())
	pending, err := s.controller.Submit(ctx, id, session.Question{
		Input:    req.Input,
		Category: req.Category,
		Provider: req.Provider,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request, id string) {
	var req ChoiceRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	side, err := session.ParseSide(req.Side)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	record, err := s.controller.Choose(r.Context(), id, side)
	var persistErr *session.PersistError
	switch {
	case errors.As(err, &persistErr):
		s.writeJSON(w, http.StatusOK, ChoiceResponse{Record: record, Warning: persistErr.Error()})
	case err != nil:
		s.writeFailure(w, r, err)
	default:
		s.writeJSON(w, http.StatusOK, ChoiceResponse{Record: record})
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.controller.Reset(id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.handleSession(w, r, id)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request, id string) {
	records, err := s.controller.History(id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if records == nil {
		records = []preference.Record{}
	}
	resp := PreferencesResponse{Records: records}
	if wantStats(r.URL.Query().Get("stats")) {
		resp.Stats = s.sessionStats(id, records)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) sessionStats(id string, records []preference.Record) map[string]map[string]int {
	categories := make([]string, 0, len(records))
	for _, rec := range records {
		categories = append(categories, rec.Category)
	}
	slices.Sort(categories)
	stats := make(map[string]map[string]int)
	for _, category := range slices.Compact(categories) {
		counts, err := s.controller.Stats(id, category)
		if err != nil {
			// Category was removed from the catalog after the pick.
			continue
		}
		stats[category] = counts
	}
	return stats
}

func (s *Server) handleClearPreferences(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.controller.ClearPreferences(id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func wantStats(value string) bool {
	value = strings.TrimSpace(value)
	return value == "1" || strings.EqualFold(value, "true")
}
