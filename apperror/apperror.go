// Package apperror defines the error taxonomy shared by the repository,
// service and HTTP layers. Every failure that leaves a service is an *Error
// carrying a Kind; the HTTP layer maps the Kind to a status code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnhandled Kind = iota
	KindValidation
	KindNotFound
	KindAuthFailure
	KindInvalidToken
	KindInsufficientPrivilege
	KindStorage
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthFailure:
		return "auth_failure"
	case KindInvalidToken:
		return "invalid_token"
	case KindInsufficientPrivilege:
		return "insufficient_privilege"
	case KindStorage:
		return "storage"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unhandled"
	}
}

// Error is a classified failure. Message is safe to show to a caller for the
// expected kinds; Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrAuthFailure           = &Error{Kind: KindAuthFailure}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken}
	ErrInsufficientPrivilege = &Error{Kind: KindInsufficientPrivilege}
	ErrStorage               = &Error{Kind: KindStorage}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// InvalidCredentials is the single failure returned for every login
// rejection: unknown code, unverified department and wrong password.
func InvalidCredentials() *Error {
	return &Error{Kind: KindAuthFailure, Message: "invalid credentials"}
}

func InvalidToken(err error) *Error {
	return &Error{Kind: KindInvalidToken, Message: "invalid or expired token", Err: err}
}

func MissingToken() *Error {
	return &Error{Kind: KindInvalidToken, Message: "access token required"}
}

func InsufficientPrivilege(msg string) *Error {
	return &Error{Kind: KindInsufficientPrivilege, Message: msg}
}

func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// Storage wraps a persistence failure. The message is logged, never shown.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// KindOf reports the Kind of err, or KindUnhandled for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnhandled
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthFailure, KindInvalidToken:
		return http.StatusUnauthorized
	case KindInsufficientPrivilege:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether the message of err may be returned to the caller.
func Public(err error) bool {
	switch KindOf(err) {
	case KindStorage, KindUnhandled:
		return false
	default:
		return true
	}
}
