package services_test

import (
	"context"
	"testing"

	"askgreg/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithCategory(ctx, "Math Tutor")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if category, ok := services.CategoryFromContext(ctx); !ok || category != "Math Tutor" {
		t.Fatalf("unexpected category: %v %v", category, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCategory(ctx, "")
	ctx = services.WithSessionID(ctx, "")
	if _, ok := services.CategoryFromContext(ctx); ok {
		t.Fatal("expected no category value")
	}
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session value")
	}
}
