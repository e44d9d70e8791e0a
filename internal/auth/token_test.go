package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newCodec(t *testing.T, secret string) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(secret, "test-issuer", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("codec error: %v", err)
	}
	return codec
}

func TestTokenRoundTrip(t *testing.T) {
	codec := newCodec(t, "secret")
	token, err := codec.Issue("user-1", "student")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	id, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if id.ID != "user-1" || id.Role != "student" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestTokenValidUntilWindowElapses(t *testing.T) {
	codec := newCodec(t, "secret")
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issuedAt }

	token, err := codec.Issue("user-1", "professional")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	codec.now = func() time.Time { return issuedAt.Add(7*24*time.Hour - time.Minute) }
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("expected token valid just before expiry, got %v", err)
	}

	codec.now = func() time.Time { return issuedAt.Add(7*24*time.Hour + time.Minute) }
	if _, err := codec.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	codec := newCodec(t, "secret")
	other := newCodec(t, "other-secret")

	foreign, err := other.Issue("user-1", "student")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := codec.Verify(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong signature, got %v", err)
	}

	good, _ := codec.Issue("user-1", "student")
	tampered := good[:strings.LastIndex(good, ".")+1] + "AAAA"
	if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	if _, err := codec.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
	if _, err := codec.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	codec := newCodec(t, "secret")
	token, err := codec.Issue("user-1", "admin")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown role, got %v", err)
	}
}

func TestNewTokenCodecRequiresSecret(t *testing.T) {
	if _, err := NewTokenCodec("", "issuer", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
