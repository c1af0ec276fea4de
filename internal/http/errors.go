package api

import (
	"errors"
	"net/http"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/domain/user"
	"poll-registry/internal/metrics"
	"poll-registry/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slogLogger.Error("request failed", "code", appErr.Code, "error", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.Body())
}

// observe counts a registry mutation under its outcome code.
func observe(op string, err error) {
	if err == nil {
		metrics.IncOperation(op, "ok")
		return
	}
	metrics.IncOperation(op, mapError(err).Code)
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.BadRequest("email_taken", "email already taken", err)
	case errors.Is(err, user.ErrMissingFields):
		return apperr.BadRequest("invalid_input", "email and password are required", err)
	case errors.Is(err, user.ErrNotFound):
		return apperr.NotFound("user_not_found", "user not found", err)

	case errors.Is(err, poll.ErrPollNotFound):
		return apperr.NotFound("poll_not_found", "poll not found", err)
	case errors.Is(err, poll.ErrUnauthorized):
		return apperr.Forbidden("unauthorized", "only the poll creator or registry owner may do this", err)
	case errors.Is(err, poll.ErrAlreadyVoted):
		return apperr.Conflict("already_voted", "identity already voted in this poll", err)
	case errors.Is(err, poll.ErrAlreadyClosed):
		return apperr.Conflict("already_closed", "poll is already closed", err)
	case errors.Is(err, poll.ErrPollInactive):
		return apperr.BadRequest("poll_inactive", "poll is not active", err)
	case errors.Is(err, poll.ErrPollExpired):
		return apperr.BadRequest("poll_expired", "poll has ended", err)
	case errors.Is(err, poll.ErrInvalidQuestion):
		return apperr.BadRequest("invalid_question", "question cannot be empty", err)
	case errors.Is(err, poll.ErrInvalidOptionCount):
		return apperr.BadRequest("invalid_option_count", "poll must have between 2 and 20 options", err)
	case errors.Is(err, poll.ErrInvalidOption):
		return apperr.BadRequest("invalid_option", "option cannot be empty", err)
	case errors.Is(err, poll.ErrInvalidChoice):
		return apperr.BadRequest("invalid_choice", "choice is out of range", err)
	case errors.Is(err, poll.ErrInvalidAddress):
		return apperr.BadRequest("invalid_address", "identity cannot be empty", err)
	case errors.Is(err, poll.ErrInvalidDuration):
		return apperr.BadRequest("invalid_duration", "duration must be positive", err)
	case poll.KindOf(err) == poll.KindValidation:
		return apperr.BadRequest("invalid_input", err.Error(), err)
	default:
		return apperr.FromError(err)
	}
}
