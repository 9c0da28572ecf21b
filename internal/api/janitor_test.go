package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"askgreg/internal/catalog"
	"askgreg/internal/config"
	"askgreg/internal/generator"
	"askgreg/internal/session"
	"askgreg/internal/testsupport"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestJanitorDropsSessionsWithExpiredTokens(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := testsupport.NewConfig(t)
	gen := generator.New(generator.Options{})
	gen.Register(testsupport.NewProvider("fake"))
	controller := session.NewController(session.Options{
		Catalog:         catalog.Inline(),
		Generator:       gen,
		DefaultProvider: "fake",
		Seed:            5,
		Now:             clock.Now,
	})
	srv, err := New(Options{Config: cfg, Controller: controller})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.tokens.now = clock.Now
	srv.sweepEvery = 10 * time.Millisecond

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d", rec.Code)
	}
	var created CreateSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()
	if controller.Len() != 1 {
		t.Fatalf("expected the fresh session to survive, have %d", controller.Len())
	}

	clock.Advance(time.Duration(cfg.Session.TokenTTLMinutes)*time.Minute + time.Hour)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+created.SessionID, nil)
	req.Header.Set(SessionTokenHeader, created.Token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected expired token to be rejected, got %d", rec.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for controller.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("abandoned session still held: %d", controller.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWriteTimeoutCoversClassification(t *testing.T) {
	cfg := config.Default()
	cfg.Generation.TimeoutSeconds = 60

	cfg.Classification.Mode = config.ClassifyHeuristic
	if got := writeTimeout(&cfg); got != 90*time.Second {
		t.Fatalf("unexpected write timeout without llm classification: %s", got)
	}
	cfg.Classification.Mode = config.ClassifyLLM
	if got := writeTimeout(&cfg); got != 150*time.Second {
		t.Fatalf("expected room for classification plus generation, got %s", got)
	}
}
