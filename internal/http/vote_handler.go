package api

import (
	"encoding/json"
	"net/http"

	"poll-registry/internal/platform/apperr"
)

type voteRequest struct {
	Choice *int `json:"choice"`
}

// @Summary     Vote for an option
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Param       id       path      int          true  "Poll ID"
// @Param       request  body      voteRequest  true  "Zero-based option index"
// @Success     204
// @Failure     400      {object}  map[string]string  "invalid choice, inactive or expired poll"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Failure     404      {object}  map[string]string  "not found"
// @Failure     409      {object}  map[string]string  "already voted"
// @Failure     429      {object}  map[string]string  "rate limited"
// @Router      /api/v1/polls/{id}/vote [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.Choice == nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "choice is required", nil))
		return
	}

	err = h.pollSvc.Vote(pollID, *req.Choice, identityFromCtx(r))
	observe("vote", err)
	if err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Poll results
// @Tags        polls
// @Produce     json
// @Param       id   path      int  true  "Poll ID"
// @Success     200  {object}  poll.Results
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/polls/{id}/results [get]
func (h *Handler) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	res, err := h.pollSvc.Results(pollID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
