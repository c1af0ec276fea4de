package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/platform/apperr"
)

func TestIPRateLimiterForgetsIdleClients(t *testing.T) {
	now := time.Unix(0, 0)
	l := newIPRateLimiter(rate.Every(time.Hour), 1, time.Minute)
	l.now = func() time.Time { return now }

	if !l.allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("second request should be limited")
	}
	if !l.allow("10.0.0.2") {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(2 * time.Minute)
	if !l.allow("10.0.0.1") {
		t.Fatal("idle client should start with a fresh bucket")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	if got := clientIP(r); got != "192.0.2.1" {
		t.Fatalf("expected remote host, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(r); got != "192.0.2.1" {
		t.Fatalf("forwarding headers must be ignored, got %q", got)
	}
}

func TestRateLimitKeyPrefersIdentity(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	if got := rateLimitKey(r); got != "ip:192.0.2.1" {
		t.Fatalf("expected address key, got %q", got)
	}

	r = r.WithContext(context.WithValue(r.Context(), ctxKeyIdentity, poll.Identity("alice")))
	if got := rateLimitKey(r); got != "id:alice" {
		t.Fatalf("expected identity key, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/polls", nil))
	if rec.Code != http.StatusNoContent || called {
		t.Fatalf("preflight should short-circuit, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{poll.ErrPollNotFound, http.StatusNotFound, "poll_not_found"},
		{poll.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
		{poll.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
		{poll.ErrAlreadyClosed, http.StatusConflict, "already_closed"},
		{poll.ErrPollInactive, http.StatusBadRequest, "poll_inactive"},
		{poll.ErrPollExpired, http.StatusBadRequest, "poll_expired"},
		{poll.ErrInvalidChoice, http.StatusBadRequest, "invalid_choice"},
		{apperr.TooManyRequests("rate_limited", "slow down"), http.StatusTooManyRequests, "rate_limited"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		got := mapError(tt.err)
		if got.StatusCode() != tt.status || got.Code != tt.code {
			t.Errorf("mapError(%v) = %d %s, want %d %s", tt.err, got.StatusCode(), got.Code, tt.status, tt.code)
		}
	}
}
