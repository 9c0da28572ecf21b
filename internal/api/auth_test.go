package api

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer, err := newTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("newTokenIssuer: %v", err)
	}
	token, err := issuer.issue("session-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := issuer.verify(token, "session-1"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := issuer.verify(token, "session-2"); !errors.Is(err, errInvalidToken) {
		t.Fatalf("expected subject mismatch to fail, got %v", err)
	}

	other, _ := newTokenIssuer("other-secret", time.Hour)
	if err := other.verify(token, "session-1"); !errors.Is(err, errInvalidToken) {
		t.Fatalf("expected signature mismatch to fail, got %v", err)
	}
}

func TestTokenIssuerExpiry(t *testing.T) {
	issuer, _ := newTokenIssuer("secret", time.Minute)
	now := time.Now()
	issuer.now = func() time.Time { return now }
	token, err := issuer.issue("s")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = func() time.Time { return now.Add(2 * time.Minute) }
	if err := issuer.verify(token, "s"); !errors.Is(err, errInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestTokenIssuerRandomSecret(t *testing.T) {
	a, err := newTokenIssuer("", 0)
	if err != nil {
		t.Fatalf("newTokenIssuer: %v", err)
	}
	b, _ := newTokenIssuer("", 0)
	token, _ := a.issue("s")
	if err := a.verify(token, "s"); err != nil {
		t.Fatalf("verify own token: %v", err)
	}
	if err := b.verify(token, "s"); err == nil {
		t.Fatal("expected independent random secrets to differ")
	}
}
