// Package apperr holds the typed error taxonomy shared by the scoring client,
// the lead store and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport covers network failures, timeouts and non-2xx replies.
	KindTransport
	// KindAuth means the scoring service rejected or lacks credentials.
	KindAuth
	// KindRateLimited means the scoring service throttled the call.
	KindRateLimited
	// KindMalformed means the service replied but the content breaks the contract.
	KindMalformed
	// KindValidation is a caller-side rejection made before any network call.
	KindValidation
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport_failure"
	case KindAuth:
		return "auth_failure"
	case KindRateLimited:
		return "rate_limited"
	case KindMalformed:
		return "malformed_response"
	case KindValidation:
		return "validation_failure"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind       Kind
	Message    string
	Op         string
	Err        error
	RetryAfter time.Duration
	Details    any
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusBadGateway
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTransport, KindMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// RateLimited builds a throttling error carrying the server's requested delay (0 if none).
func RateLimited(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfter}
}

// GetKind walks the wrap chain and returns the first *Error's kind.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// Retryable reports whether another attempt could plausibly succeed.
func Retryable(err error) bool {
	switch GetKind(err) {
	case KindTransport, KindRateLimited:
		return true
	}
	return false
}

func RetryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindRateLimited {
		return e.RetryAfter
	}
	return 0
}
