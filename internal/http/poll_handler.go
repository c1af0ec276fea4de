package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/platform/apperr"
)

type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// DurationSeconds of 0 creates a poll without an end time.
	DurationSeconds int64 `json:"duration_seconds"`
}

// maxDurationSeconds is the largest whole-second value a time.Duration holds.
const maxDurationSeconds = int64(math.MaxInt64 / time.Second)

// secondsToDuration converts a request field to a Duration, rejecting values
// that would overflow.
func secondsToDuration(seconds int64) (time.Duration, error) {
	if seconds > maxDurationSeconds || seconds < -maxDurationSeconds {
		return 0, poll.ErrInvalidDuration
	}
	return time.Duration(seconds) * time.Second, nil
}

type extendPollRequest struct {
	AdditionalSeconds int64 `json:"additional_seconds"`
}

type pollResponse struct {
	ID         uint64        `json:"id"`
	Question   string        `json:"question"`
	Options    []poll.Choice `json:"options"`
	Creator    poll.Identity `json:"creator"`
	CreatedAt  time.Time     `json:"created_at"`
	EndTime    *time.Time    `json:"end_time"`
	IsActive   bool          `json:"is_active"`
	Expired    bool          `json:"expired"`
	TotalVotes uint64        `json:"total_votes"`
}

type pollListResponse struct {
	Polls  []pollResponse `json:"polls"`
	Total  uint64         `json:"total"`
	Offset uint64         `json:"offset"`
	Limit  uint64         `json:"limit"`
}

func newPollResponse(p poll.Poll, now time.Time) pollResponse {
	resp := pollResponse{
		ID:         p.ID,
		Question:   p.Question,
		Options:    p.Choices,
		Creator:    p.Creator,
		CreatedAt:  p.CreatedAt,
		IsActive:   p.IsActive,
		Expired:    p.Expired(now),
		TotalVotes: p.TotalVotes,
	}
	if p.Bounded() {
		end := p.EndTime
		resp.EndTime = &end
	}
	return resp
}

// @Summary     Create poll
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      createPollRequest  true  "Poll definition"
// @Success     201      {object}  map[string]uint64
// @Failure     400      {object}  map[string]string  "invalid question, options or duration"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Failure     500      {object}  map[string]string  "server error"
// @Router      /api/v1/polls [post]
func (h *Handler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.DurationSeconds < 0 {
		errorResponse(w, poll.ErrInvalidDuration)
		return
	}
	duration, err := secondsToDuration(req.DurationSeconds)
	if err != nil {
		errorResponse(w, err)
		return
	}

	id, err := h.pollSvc.Create(req.Question, req.Options, duration, identityFromCtx(r))
	observe("create", err)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

// @Summary     List polls
// @Tags        polls
// @Produce     json
// @Param       offset  query     int  false  "First poll id"
// @Param       limit   query     int  false  "Page size (max 100)"
// @Success     200     {object}  pollListResponse
// @Failure     400     {object}  map[string]string  "invalid paging"
// @Router      /api/v1/polls [get]
func (h *Handler) handleListPolls(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := parsePage(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	polls, total := h.pollSvc.List(offset, limit)
	now := h.pollSvc.Now()
	resp := pollListResponse{
		Polls:  make([]pollResponse, 0, len(polls)),
		Total:  total,
		Offset: offset,
		Limit:  limit,
	}
	for _, p := range polls {
		resp.Polls = append(resp.Polls, newPollResponse(p, now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary     Active poll ids
// @Description Polls that have not been closed, including ones whose end time has passed.
// @Tags        polls
// @Produce     json
// @Success     200  {object}  map[string][]uint64
// @Router      /api/v1/polls/active [get]
func (h *Handler) handleActivePolls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]uint64{"poll_ids": h.pollSvc.Active()})
}

// @Summary     Get poll
// @Tags        polls
// @Produce     json
// @Param       id   path      int  true  "Poll ID"
// @Success     200  {object}  pollResponse
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/polls/{id} [get]
func (h *Handler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	p, err := h.pollSvc.Get(id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPollResponse(p, h.pollSvc.Now()))
}

// @Summary     Poll status
// @Description Stored active flag. Unknown polls report false.
// @Tags        polls
// @Produce     json
// @Param       id   path      int  true  "Poll ID"
// @Success     200  {object}  map[string]any
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Router      /api/v1/polls/{id}/status [get]
func (h *Handler) handlePollStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"poll_id": id,
		"active":  h.pollSvc.IsActive(id),
	})
}

// @Summary     Has voted
// @Tags        polls
// @Produce     json
// @Param       id        path      int     true  "Poll ID"
// @Param       identity  path      string  true  "Voter identity"
// @Success     200       {object}  map[string]any
// @Failure     400       {object}  map[string]string  "invalid poll id"
// @Router      /api/v1/polls/{id}/voters/{identity} [get]
func (h *Handler) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}
	identity := poll.Identity(chi.URLParam(r, "identity"))
	writeJSON(w, http.StatusOK, map[string]any{
		"poll_id":   id,
		"identity":  identity,
		"has_voted": h.pollSvc.HasVoted(id, identity),
	})
}

// @Summary     Close poll
// @Description Only the poll creator or the registry owner may close a poll.
// @Tags        polls
// @Security    BearerAuth
// @Param       id   path  int  true  "Poll ID"
// @Success     204
// @Failure     401  {object}  map[string]string  "unauthorized"
// @Failure     403  {object}  map[string]string  "not creator or owner"
// @Failure     404  {object}  map[string]string  "not found"
// @Failure     409  {object}  map[string]string  "already closed"
// @Router      /api/v1/polls/{id}/close [post]
func (h *Handler) handleClosePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	err = h.pollSvc.Close(id, identityFromCtx(r))
	observe("close", err)
	if err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Extend poll
// @Description Moves the end time to max(end time, now) plus the extension.
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      int                true  "Poll ID"
// @Param       request  body      extendPollRequest  true  "Extension"
// @Success     200      {object}  map[string]any
// @Failure     400      {object}  map[string]string  "invalid duration"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Failure     403      {object}  map[string]string  "not creator or owner"
// @Failure     404      {object}  map[string]string  "not found"
// @Router      /api/v1/polls/{id}/extend [post]
func (h *Handler) handleExtendPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req extendPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	additional, err := secondsToDuration(req.AdditionalSeconds)
	if err != nil {
		errorResponse(w, err)
		return
	}

	end, err := h.pollSvc.Extend(id, additional, identityFromCtx(r))
	observe("extend", err)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"poll_id":  id,
		"end_time": end,
	})
}
