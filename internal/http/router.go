package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/domain/user"
	"poll-registry/internal/platform/apperr"
	jwtpkg "poll-registry/internal/platform/jwt"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the router. Zero values fall back to defaults.
type Options struct {
	TokenTTL       time.Duration
	VotesPerMin    int
	VoteBurst      int
	HandlerTimeout time.Duration

	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that sets them.
	TrustProxy bool

	// Bus is checked by /ready when set.
	Bus Pinger
}

func (o Options) withDefaults() Options {
	if o.TokenTTL <= 0 {
		o.TokenTTL = 24 * time.Hour
	}
	if o.VotesPerMin <= 0 {
		o.VotesPerMin = 60
	}
	if o.VoteBurst <= 0 {
		o.VoteBurst = 10
	}
	if o.HandlerTimeout <= 0 {
		o.HandlerTimeout = 60 * time.Second
	}
	return o
}

type Handler struct {
	userSvc *user.Service
	pollSvc *poll.Service
	jwtMgr  *jwtpkg.Manager
	journal poll.Journal
	opts    Options
}

func NewRouter(
	userSvc *user.Service,
	pollSvc *poll.Service,
	jwtMgr *jwtpkg.Manager,
	journal poll.Journal,
	opts Options,
) http.Handler {
	opts = opts.withDefaults()
	h := &Handler{
		userSvc: userSvc,
		pollSvc: pollSvc,
		jwtMgr:  jwtMgr,
		journal: journal,
		opts:    opts,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(opts.HandlerTimeout))
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	voteLimit := rate.Every(time.Minute / time.Duration(opts.VotesPerMin))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Get("/polls", h.handleListPolls)
		r.Get("/polls/active", h.handleActivePolls)
		r.Get("/polls/{id}", h.handleGetPoll)
		r.Get("/polls/{id}/results", h.handlePollResults)
		r.Get("/polls/{id}/status", h.handlePollStatus)
		r.Get("/polls/{id}/voters/{identity}", h.handleHasVoted)
		r.Get("/registry/owner", h.handleGetOwner)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtMgr))

			r.Post("/polls", h.handleCreatePoll)
			r.With(RateLimitVotes(voteLimit, opts.VoteBurst)).Post("/polls/{id}/vote", h.handleVote)
			r.Post("/polls/{id}/close", h.handleClosePoll)
			r.Post("/polls/{id}/extend", h.handleExtendPoll)
			r.Put("/registry/owner", h.handleTransferOwnership)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (uint64, error) {
	idStr := chi.URLParam(r, name)
	return strconv.ParseUint(idStr, 10, 64)
}

// parsePage reads offset and limit query parameters. limit is capped at
// maxPageLimit.
func parsePage(r *http.Request) (offset, limit uint64, err error) {
	limit = defaultPageLimit
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, apperr.BadRequest("invalid_input", "invalid offset", err)
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.ParseUint(v, 10, 64); err != nil || limit == 0 {
			return 0, 0, apperr.BadRequest("invalid_input", "invalid limit", err)
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit, nil
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		errorResponse(w, apperr.Unavailable("journal_unavailable", "journal not configured", nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.journal.Ping(ctx); err != nil {
		errorResponse(w, apperr.Unavailable("journal_unavailable", "journal not ready", err))
		return
	}
	if h.opts.Bus != nil {
		if err := h.opts.Bus.Ping(ctx); err != nil {
			errorResponse(w, apperr.Unavailable("event_bus_unavailable", "event bus not ready", err))
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
