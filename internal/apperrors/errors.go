package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an expected failure so the boundary layer can translate
// it into a structured problem payload.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindTooManyRequests   Kind = "too_many_requests"
	KindEmailNotConfirmed Kind = "email_not_confirmed"
)

// Error is an expected, typed failure. Anything that is not an *Error is
// treated as an internal error by the outermost boundary and rendered
// without detail.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP-equivalent status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindEmailNotConfirmed:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) error        { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) error      { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) error         { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error          { return &Error{Kind: KindConflict, Message: msg} }
func TooManyRequests(msg string) error   { return &Error{Kind: KindTooManyRequests, Message: msg} }
func EmailNotConfirmed(msg string) error { return &Error{Kind: KindEmailNotConfirmed, Message: msg} }

// KindOf returns the kind of err, or an empty kind when err is not typed.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is a typed failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
