package poll

import "errors"

// Kind classifies registry failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindState
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindAuthorization:
		return "authorization"
	default:
		return "unknown"
	}
}

// Error is a named registry failure. Every Error leaves the registry unchanged.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

var (
	ErrInvalidQuestion    = newError(KindValidation, "question cannot be empty")
	ErrInvalidOptionCount = newError(KindValidation, "poll must have between 2 and 20 options")
	ErrInvalidOption      = newError(KindValidation, "option cannot be empty")
	ErrInvalidChoice      = newError(KindValidation, "invalid choice")
	ErrInvalidAddress     = newError(KindValidation, "invalid address")
	ErrInvalidDuration    = newError(KindValidation, "extension must be positive")

	ErrPollNotFound  = newError(KindState, "poll does not exist")
	ErrPollInactive  = newError(KindState, "poll is not active")
	ErrPollExpired   = newError(KindState, "poll has ended")
	ErrAlreadyVoted  = newError(KindState, "already voted in this poll")
	ErrAlreadyClosed = newError(KindState, "poll is already closed")

	ErrUnauthorized = newError(KindAuthorization, "caller is not allowed to perform this action")
)

// ErrReplayMismatch is returned when a journal cannot be applied to a registry.
var ErrReplayMismatch = errors.New("journal does not match registry state")

// KindOf reports the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
