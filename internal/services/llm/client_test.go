package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func completionHandler(t *testing.T, content string, inspect func(*http.Request, chatCompletionRequest)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(r, req)
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}, "finish_reason": "stop"},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "Photosynthesis turns light into sugar.", func(r *http.Request, req chatCompletionRequest) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "askgreg" {
			t.Errorf("unexpected title header %q", got)
		}
		if req.Model != "demo-model" || req.Temperature != 0.7 {
			t.Errorf("unexpected model/temperature %q/%v", req.Model, req.Temperature)
		}
		if req.ResponseFormat != nil {
			t.Errorf("plain completion must not request json, got %v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "What is photosynthesis?" {
			t.Errorf("unexpected messages %#v", req.Messages)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "demo-model", Title: "askgreg", Temperature: 0.7})
	text, err := client.Complete(context.Background(), "You are Greg.", "What is photosynthesis?")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "Photosynthesis turns light into sugar." {
		t.Fatalf("unexpected text %q", text)
	}
	if client.Name() != "openrouter" {
		t.Fatalf("unexpected provider name %q", client.Name())
	}
}

func TestCompleteJSONRequestsJSONObject(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "```json\n{\"category\":\"returns\"}\n```", func(_ *http.Request, req chatCompletionRequest) {
		if req.ResponseFormat["type"] != jsonResponseType || req.Temperature != 0 {
			t.Errorf("unexpected json request %#v", req)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m", Temperature: 0.9})
	raw, err := client.CompleteJSON(context.Background(), "classify", "I want a refund")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	var parsed struct {
		Category string `json:"category"`
	}
	if err := DecodeLLMJSON(raw, &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON: %v", err)
	}
	if parsed.Category != "returns" {
		t.Fatalf("unexpected category %q", parsed.Category)
	}
}

func TestCompleteRequiresPromptsAndKey(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	if _, err := client.Complete(context.Background(), "sys", "user"); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
	client = NewClient(Config{APIKey: "k"})
	if _, err := client.Complete(context.Background(), " ", "user"); err == nil {
		t.Fatal("expected system prompt error")
	}
	if _, err := client.Complete(context.Background(), "sys", ""); err == nil {
		t.Fatal("expected user prompt error")
	}
}

func TestCompleteRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "2")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		completionHandler(t, "finally", nil)(w, r)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithRetryMaxAttempts(3),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	text, err := client.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "finally" || calls.Load() != 3 {
		t.Fatalf("unexpected result %q after %d calls", text, calls.Load())
	}
	if len(slept) != 2 || slept[0] != 2*time.Second {
		t.Fatalf("expected Retry-After delays, got %v", slept)
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "m"}, WithSleeper(func(time.Duration) {}))
	_, err := client.Complete(context.Background(), "sys", "user")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestCompleteSingleAttemptDisablesRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, WithRetryMaxAttempts(1))
	if _, err := client.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}
}

func TestCompleteEmptyContentReportsFinishReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": ""}, "finish_reason": "content_filter"}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, WithRetryMaxAttempts(2), WithSleeper(func(time.Duration) {}))
	_, err := client.Complete(context.Background(), "sys", "user")
	if err == nil || !strings.Contains(err.Error(), "content_filter") {
		t.Fatalf("expected finish reason in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed after 2 attempts") {
		t.Fatalf("expected attempt count in error, got %v", err)
	}
}

func TestCompleteHonoursContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	if _, err := client.Complete(ctx, "sys", "user"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestBackoffDelayCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	cases := map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second, 4: 5 * time.Second, 10: 5 * time.Second}
	for attempt, want := range cases {
		if got := client.backoffDelay(attempt); got != want {
			t.Fatalf("attempt %d: got %v want %v", attempt, got, want)
		}
	}
}
