package api

import (
	"encoding/json"
	"net/http"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/platform/apperr"
)

type transferOwnershipRequest struct {
	NewOwner poll.Identity `json:"new_owner"`
}

// @Summary     Registry owner
// @Tags        registry
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      /api/v1/registry/owner [get]
func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]poll.Identity{"owner": h.pollSvc.Owner()})
}

// @Summary     Transfer registry ownership
// @Description Only the current owner may transfer ownership.
// @Tags        registry
// @Security    BearerAuth
// @Accept      json
// @Param       request  body  transferOwnershipRequest  true  "New owner identity"
// @Success     204
// @Failure     400  {object}  map[string]string  "invalid address"
// @Failure     401  {object}  map[string]string  "unauthorized"
// @Failure     403  {object}  map[string]string  "not the owner"
// @Router      /api/v1/registry/owner [put]
func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req transferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	err := h.pollSvc.TransferOwnership(req.NewOwner, identityFromCtx(r))
	observe("transfer_ownership", err)
	if err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
