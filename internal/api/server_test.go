package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"askgreg/internal/api"
	"askgreg/internal/catalog"
	"askgreg/internal/config"
	"askgreg/internal/generator"
	"askgreg/internal/intent"
	"askgreg/internal/preference/sink"
	"askgreg/internal/session"
	"askgreg/internal/testsupport"
)

type harness struct {
	server *httptest.Server
	store  *sink.SQLite
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	cat := catalog.Inline()
	gen := generator.New(generator.Options{Timeout: 5 * time.Second})
	gen.Register(testsupport.NewProvider("fake"))
	store := testsupport.MustOpenSQLite(t)
	controller := session.NewController(session.Options{
		Catalog:         cat,
		Generator:       gen,
		Classifier:      intent.NewHeuristic(cat, config.DefaultClassificationRules(), "general"),
		Sink:            store,
		DefaultProvider: "fake",
		Source:          rand.New(rand.NewPCG(1, 2)),
	})
	srv, err := api.New(api.Options{Config: cfg, Controller: controller, Querier: store})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return harness{server: ts, store: store}
}

type call struct {
	method string
	path   string
	token  string
	bearer string
	body   any
}

func (h harness) do(t *testing.T, c call, out any) int {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		data, err := json.Marshal(c.body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(c.method, h.server.URL+c.path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if c.token != "" {
		req.Header.Set(api.SessionTokenHeader, c.token)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	resp, err := h.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", c.method, c.path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", c.method, c.path, err)
		}
	}
	return resp.StatusCode
}

func (h harness) openSession(t *testing.T) api.CreateSessionResponse {
	t.Helper()
	var created api.CreateSessionResponse
	if code := h.do(t, call{method: http.MethodPost, path: "/api/sessions"}, &created); code != http.StatusCreated {
		t.Fatalf("create session: status %d", code)
	}
	if created.SessionID == "" || created.Token == "" {
		t.Fatalf("unexpected create response %#v", created)
	}
	return created
}

func TestHTTPAskCompareChooseFlow(t *testing.T) {
	h := newHarness(t)

	var health api.HealthResponse
	if code := h.do(t, call{method: http.MethodGet, path: "/api/health"}, &health); code != http.StatusOK {
		t.Fatalf("health: status %d", code)
	}
	if health.Status != "ok" || health.DefaultProvider != "fake" || len(health.Providers) != 1 {
		t.Fatalf("unexpected health %#v", health)
	}

	var cats api.CategoriesResponse
	h.do(t, call{method: http.MethodGet, path: "/api/categories"}, &cats)
	if len(cats.Categories) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(cats.Categories))
	}

	s := h.openSession(t)
	base := "/api/sessions/" + s.SessionID

	var pending session.Pending
	code := h.do(t, call{method: http.MethodPost, path: base + "/questions", token: s.Token,
		body: api.QuestionRequest{Input: "What is photosynthesis?", Category: "General Questions"}}, &pending)
	if code != http.StatusOK {
		t.Fatalf("question: status %d", code)
	}
	if pending.FirstVariant == pending.SecondVariant || pending.FirstText == "" || pending.SecondText == "" {
		t.Fatalf("unexpected pending %#v", pending)
	}

	var snap api.SessionResponse
	h.do(t, call{method: http.MethodGet, path: base, token: s.Token}, &snap)
	if snap.Session.State != session.StateAwaitingChoice || snap.Session.Pending == nil {
		t.Fatalf("expected awaiting choice, got %#v", snap.Session)
	}

	var choice api.ChoiceResponse
	if code := h.do(t, call{method: http.MethodPost, path: base + "/choice", token: s.Token,
		body: api.ChoiceRequest{Side: "right"}}, &choice); code != http.StatusOK {
		t.Fatalf("choice: status %d", code)
	}
	if choice.Record.ChosenVariant != pending.SecondVariant || choice.Warning != "" {
		t.Fatalf("unexpected choice %#v", choice)
	}

	var prefs api.PreferencesResponse
	h.do(t, call{method: http.MethodGet, path: base + "/preferences?stats=1", token: s.Token}, &prefs)
	if len(prefs.Records) != 1 || prefs.Stats["General Questions"][pending.SecondVariant] != 1 {
		t.Fatalf("unexpected preferences %#v", prefs)
	}

	var stats api.StatsResponse
	h.do(t, call{method: http.MethodGet, path: "/api/stats"}, &stats)
	if len(stats.Stats) != 1 || stats.Stats[0].Variant != pending.SecondVariant || stats.Stats[0].Picks != 1 {
		t.Fatalf("unexpected durable stats %#v", stats)
	}

	if code := h.do(t, call{method: http.MethodDelete, path: base + "/preferences", token: s.Token}, nil); code != http.StatusNoContent {
		t.Fatalf("clear preferences: status %d", code)
	}
	var cleared api.PreferencesResponse
	h.do(t, call{method: http.MethodGet, path: base + "/preferences", token: s.Token}, &cleared)
	if cleared.Records == nil || len(cleared.Records) != 0 || cleared.Stats != nil {
		t.Fatalf("expected cleared preferences, got %#v", cleared)
	}

	h.do(t, call{method: http.MethodPost, path: base + "/reset", token: s.Token}, &snap)
	if snap.Session.State != session.StateIdle || len(snap.Session.Transcript) != 0 {
		t.Fatalf("unexpected reset snapshot %#v", snap.Session)
	}

	if code := h.do(t, call{method: http.MethodDelete, path: base, token: s.Token}, nil); code != http.StatusNoContent {
		t.Fatalf("close: status %d", code)
	}
	var failure api.ErrorResponse
	if code := h.do(t, call{method: http.MethodGet, path: base, token: s.Token}, &failure); code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", code)
	}
	if failure.Kind != "not_found" {
		t.Fatalf("unexpected failure %#v", failure)
	}
}

func TestHTTPClassifiesWhenCategoryOmitted(t *testing.T) {
	h := newHarness(t)
	s := h.openSession(t)
	var pending session.Pending
	h.do(t, call{method: http.MethodPost, path: "/api/sessions/" + s.SessionID + "/questions", token: s.Token,
		body: api.QuestionRequest{Input: "How do I return these shoes?"}}, &pending)
	if pending.Category != "returns" || pending.Classification == nil {
		t.Fatalf("expected classification into returns, got %#v", pending)
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	h := newHarness(t)
	s := h.openSession(t)
	base := "/api/sessions/" + s.SessionID

	cases := []struct {
		name string
		call call
		code int
		kind string
	}{
		{"empty input", call{method: http.MethodPost, path: base + "/questions", body: api.QuestionRequest{Input: " ", Category: "Math Tutor"}}, http.StatusBadRequest, "validation"},
		{"unknown category", call{method: http.MethodPost, path: base + "/questions", body: api.QuestionRequest{Input: "q", Category: "Astrology"}}, http.StatusBadRequest, "invalid_category"},
		{"unknown provider", call{method: http.MethodPost, path: base + "/questions", body: api.QuestionRequest{Input: "q", Category: "Math Tutor", Provider: "claude"}}, http.StatusBadRequest, "validation"},
		{"malformed body", call{method: http.MethodPost, path: base + "/questions", body: map[string]any{"input": 3}}, http.StatusBadRequest, "validation"},
		{"choice without pending", call{method: http.MethodPost, path: base + "/choice", body: api.ChoiceRequest{Side: "left"}}, http.StatusConflict, "conflict"},
		{"invalid side", call{method: http.MethodPost, path: base + "/choice", body: api.ChoiceRequest{Side: "middle"}}, http.StatusBadRequest, "validation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.call.token = s.Token
			var failure api.ErrorResponse
			if code := h.do(t, tc.call, &failure); code != tc.code {
				t.Fatalf("expected %d, got %d (%#v)", tc.code, code, failure)
			}
			if failure.Kind != tc.kind || failure.Error == "" {
				t.Fatalf("unexpected failure %#v", failure)
			}
		})
	}

	question := call{method: http.MethodPost, path: base + "/questions", token: s.Token, body: api.QuestionRequest{Input: "q", Category: "Math Tutor"}}
	if code := h.do(t, question, &session.Pending{}); code != http.StatusOK {
		t.Fatalf("question: status %d", code)
	}
	var failure api.ErrorResponse
	if code := h.do(t, question, &failure); code != http.StatusConflict {
		t.Fatalf("expected 409 for second question, got %d", code)
	}
}

func TestHTTPSessionTokenRequired(t *testing.T) {
	h := newHarness(t)
	first := h.openSession(t)
	second := h.openSession(t)

	var failure api.ErrorResponse
	if code := h.do(t, call{method: http.MethodGet, path: "/api/sessions/" + first.SessionID}, &failure); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code := h.do(t, call{method: http.MethodGet, path: "/api/sessions/" + first.SessionID, token: second.Token}, &failure); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for another session's token, got %d", code)
	}
	if code := h.do(t, call{method: http.MethodGet, path: "/api/sessions/" + first.SessionID, token: "garbage"}, &failure); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", code)
	}
}

func TestHTTPBearerToken(t *testing.T) {
	h := newHarness(t, testsupport.WithAPIToken("s3cret"))
	if code := h.do(t, call{method: http.MethodGet, path: "/api/health"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer, got %d", code)
	}
	if code := h.do(t, call{method: http.MethodGet, path: "/api/health", bearer: "wrong"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong bearer, got %d", code)
	}
	var health api.HealthResponse
	if code := h.do(t, call{method: http.MethodGet, path: "/api/health", bearer: "s3cret"}, &health); code != http.StatusOK {
		t.Fatalf("expected 200 with bearer, got %d", code)
	}
}

func TestHTTPCORSPreflight(t *testing.T) {
	h := newHarness(t, testsupport.WithAPIToken("s3cret"))
	req, err := http.NewRequest(http.MethodOptions, h.server.URL+"/api/sessions", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", api.SessionTokenHeader)
	resp, err := h.server.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		t.Fatalf("preflight rejected with %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatal("expected Access-Control-Allow-Origin header")
	}
}

func TestServerStartAndStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gen := generator.New(generator.Options{})
	gen.Register(testsupport.NewProvider("fake"))
	controller := session.NewController(session.Options{Catalog: catalog.Inline(), Generator: gen, DefaultProvider: "fake", Seed: 3})
	srv, err := api.New(api.Options{Config: cfg, Controller: controller})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	resp, err = http.Get("http://" + srv.Addr() + "/api/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without a queryable sink, got %d", resp.StatusCode)
	}
	srv.Stop()
}
