package api

import (
	"encoding/json"
	"net/http"

	"poll-registry/internal/domain/user"
	"poll-registry/internal/platform/apperr"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// @Summary     Register a new identity
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request  body      authRequest  true  "Credentials"
// @Success     201      {object}  authResponse
// @Failure     400      {object}  map[string]string  "invalid body or email taken"
// @Failure     500      {object}  map[string]string  "server error"
// @Router      /api/v1/auth/register [post]
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	u, err := h.userSvc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}

	token, err := h.jwtMgr.Generate(u.ID, u.Email, h.opts.TokenTTL)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: u, Token: token})
}

// @Summary     Log in
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request  body      authRequest  true  "Credentials"
// @Success     200      {object}  authResponse
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     401      {object}  map[string]string  "invalid credentials"
// @Failure     500      {object}  map[string]string  "server error"
// @Router      /api/v1/auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	u, err := h.userSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}

	token, err := h.jwtMgr.Generate(u.ID, u.Email, h.opts.TokenTTL)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: u, Token: token})
}
