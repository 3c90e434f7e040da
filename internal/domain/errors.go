package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Handlers raise *Error values built from the constructors below;
// the API layer maps them to HTTP status codes at a single conversion point.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

type Error struct {
	Kind    error  // one of the sentinel kinds above
	Message string // safe to show to the caller
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func InvalidArgument(message string) *Error {
	return &Error{Kind: ErrInvalidArgument, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Internal(message string) *Error {
	return &Error{Kind: ErrInternal, Message: message}
}

// StatusCode translates an error kind into the HTTP status the envelope carries.
// Unknown errors map to 500 without leaking their message.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
