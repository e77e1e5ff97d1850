// Package apperr defines the error kinds surfaced by services and their HTTP mapping.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	Unauthorized         Kind = "unauthorized"
	Forbidden            Kind = "forbidden"
	NotFound             Kind = "not_found"
	InvalidState         Kind = "invalid_state"
	AlreadyJoined        Kind = "already_joined"
	Full                 Kind = "full"
	NotParticipant       Kind = "not_participant"
	OrganizerCannotLeave Kind = "organizer_cannot_leave"
	Validation           Kind = "validation"
	Internal             Kind = "internal"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can test against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Wrap(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Msg: msg, Err: err} }

// Kind-only sentinels for errors.Is.
var (
	ErrUnauthorized         = &Error{Kind: Unauthorized}
	ErrForbidden            = &Error{Kind: Forbidden}
	ErrNotFound             = &Error{Kind: NotFound}
	ErrInvalidState         = &Error{Kind: InvalidState}
	ErrAlreadyJoined        = &Error{Kind: AlreadyJoined}
	ErrFull                 = &Error{Kind: Full}
	ErrNotParticipant       = &Error{Kind: NotParticipant}
	ErrOrganizerCannotLeave = &Error{Kind: OrganizerCannotLeave}
	ErrValidation           = &Error{Kind: Validation}
)

// KindOf returns Internal for errors that did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func HTTPStatus(k Kind) int {
	switch k {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidState, AlreadyJoined, Full, NotParticipant, OrganizerCannotLeave, Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message is the text shown to clients; internal causes are not leaked.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		if e.Msg != "" {
			return e.Msg
		}
		return string(e.Kind)
	}
	return "internal error"
}
