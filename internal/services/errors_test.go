package services_test

import (
	"errors"
	"strings"
	"testing"

	"askgreg/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrGenerationFailed, "generator", "openai", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrGenerationFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"generator", "openai", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInvalidCategory, "catalog", "lookup", "unknown category \"x\"", nil)
	if !errors.Is(err, services.ErrInvalidCategory) {
		t.Fatalf("expected invalid category marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown category") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrInvalidCategory, "catalog", "", "", nil), "invalid_category"},
		{services.Wrap(services.ErrConfiguration, "config", "", "", nil), "configuration"},
		{services.Wrap(services.ErrGenerationFailed, "generator", "", "", errors.New("io")), "generation_failed"},
		{services.Wrap(services.ErrValidation, "session", "", "", nil), "validation"},
		{services.ErrNotFound, "not_found"},
		{services.ErrConflict, "conflict"},
		{errors.New("other"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
