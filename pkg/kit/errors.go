package kit

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindForbidden        Kind = "forbidden"
	KindRateLimit        Kind = "rate_limit"
	KindUnavailable      Kind = "unavailable"
)

var kindStatus = map[Kind]int{
	KindValidation:       http.StatusBadRequest,
	KindNotFound:         http.StatusNotFound,
	KindMethodNotAllowed: http.StatusMethodNotAllowed,
	KindForbidden:        http.StatusForbidden,
	KindRateLimit:        http.StatusTooManyRequests,
	KindUnavailable:      http.StatusServiceUnavailable,
}

const internalMessage = "Internal server error"

// Error is a domain failure whose Kind decides the external status code.
// Anything that is not an *Error is treated as unexpected.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func MethodNotAllowed(msg string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: msg}
}

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func RateLimited(msg string) *Error { return &Error{Kind: KindRateLimit, Message: msg} }

func Unavailable(msg string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Cause: cause}
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// StatusOf maps err onto an HTTP status and the message safe to expose.
func StatusOf(err error) (int, string) {
	var e *Error
	if errors.As(err, &e) {
		if status, ok := kindStatus[e.Kind]; ok {
			return status, e.Message
		}
	}
	return http.StatusInternalServerError, internalMessage
}
