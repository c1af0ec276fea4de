package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/metrics"
	"poll-registry/internal/platform/apperr"
	jwtpkg "poll-registry/internal/platform/jwt"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

var slogLogger = slog.Default()

func SetLogger(l *slog.Logger) {
	if l != nil {
		slogLogger = l
	}
}

// AuthMiddleware resolves the bearer token to the caller identity the
// registry sees. The token subject is the identity.
func AuthMiddleware(jm *jwtpkg.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				errorResponse(w, apperr.Unauthorized("missing_token", "missing authorization header", nil))
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				errorResponse(w, apperr.Unauthorized("invalid_token", "invalid authorization header", nil))
				return
			}

			claims, err := jm.Parse(parts[1])
			if err != nil {
				errorResponse(w, apperr.Unauthorized("invalid_token", "invalid token", err))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, poll.Identity(claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFromCtx(r *http.Request) poll.Identity {
	if id, ok := r.Context().Value(ctxKeyIdentity).(poll.Identity); ok {
		return id
	}
	return ""
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitVotes limits votes per authenticated identity, falling back to
// the client address for anonymous requests.
func RateLimitVotes(r rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := newIPRateLimiter(r, burst, 10*time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(rateLimitKey(r)) {
				errorResponse(w, apperr.TooManyRequests("rate_limited", "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(rw, r)

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		metrics.IncRequest(r.Method, route, status)

		slogLogger.Info("request",
			"method", r.Method,
			"path", route,
			"status", status,
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// ipRateLimiter keeps one token bucket per client address and forgets
// addresses idle for longer than entryTTL.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
	entryTTL time.Duration
	now      func() time.Time
}

func newIPRateLimiter(limit rate.Limit, burst int, entryTTL time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    limit,
		burst:    burst,
		entryTTL: entryTTL,
		now:      time.Now,
	}
}

func (l *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, ts := range l.lastSeen {
		if now.Sub(ts) > l.entryTTL {
			delete(l.limiters, key)
			delete(l.lastSeen, key)
		}
	}

	l.lastSeen[ip] = now
	if limiter, ok := l.limiters[ip]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

func (l *ipRateLimiter) allow(ip string) bool {
	return l.getLimiter(ip).Allow()
}

func rateLimitKey(r *http.Request) string {
	if id := identityFromCtx(r); id != "" {
		return "id:" + string(id)
	}
	return "ip:" + clientIP(r)
}

// clientIP is the host part of RemoteAddr. Forwarding headers are only
// honored through chimw.RealIP when the router trusts its proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
