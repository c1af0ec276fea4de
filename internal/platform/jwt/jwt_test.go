package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", "test-issuer")

	token, err := m.Generate("0b6f6a52-7c4e-4bb4-9a43-0d2a1f9bdb11", "a@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "0b6f6a52-7c4e-4bb4-9a43-0d2a1f9bdb11" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Email != "a@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
}

func TestParseRejectsOtherIssuer(t *testing.T) {
	token, err := NewManager("secret", "someone-else").Generate("id", "", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewManager("secret", "test-issuer").Parse(token); !errors.Is(err, jwt.ErrTokenInvalidIssuer) {
		t.Fatalf("expected invalid issuer, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _ := NewManager("secret", "").Generate("id", "", time.Hour)
	if _, err := NewManager("other", "").Parse(token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", "")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Generate("id", "", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	m.now = time.Now
	if _, err := m.Parse(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestGenerateRequiresIdentity(t *testing.T) {
	if _, err := NewManager("secret", "").Generate("", "", time.Hour); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected missing subject")
	}
}
