// Package errors defines the error taxonomy of the chat core.
// Every rejection a client can observe maps to exactly one of the
// typed errors below; Code translates them into wire error codes.
package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrRoomNotFound    = fmt.Errorf("room not found")
	ErrMessageNotFound = fmt.Errorf("message not found")
	ErrThreadNotFound  = fmt.Errorf("thread not found")
	ErrVersionConflict = fmt.Errorf("room version conflict")
	ErrRoomClosed      = fmt.Errorf("room processor stopped")
)

// ValidationError rejects structurally invalid input. No state is mutated.
type ValidationError struct {
	Reason string
}

func NewValidation(format string, args ...any) ValidationError {
	return ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e ValidationError) Error() string { return e.Reason }

// AuthorizationError rejects an actor lacking the required role.
// No room version is consumed.
type AuthorizationError struct {
	Reason string
}

func NewAuthorization(format string, args ...any) AuthorizationError {
	return AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

func (e AuthorizationError) Error() string { return e.Reason }

// CapacityError refuses a new connection at admission time.
type CapacityError struct {
	Limit int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("connection pool full (capacity %d)", e.Limit)
}

// RateLimitError rejects a single inbound event. The connection stays open.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// TransportError marks a failed delivery to one recipient. The message
// keeps its last successful status and is retried on reconnect.
type TransportError struct {
	Recipient string
	Err       error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// BackendTimeoutError wraps an AI backend deadline or failure.
// It is suppressed: no AI response is produced, nothing reaches the room.
type BackendTimeoutError struct {
	Deadline time.Duration
	Err      error
}

func (e BackendTimeoutError) Error() string {
	return fmt.Sprintf("ai backend did not answer within %s: %v", e.Deadline, e.Err)
}

func (e BackendTimeoutError) Unwrap() error { return e.Err }

// Wire error codes sent back on the originating connection.
const (
	CodeValidation     = "VALIDATION"
	CodeAuthorization  = "AUTHORIZATION"
	CodeCapacity       = "CAPACITY"
	CodeRateLimit      = "RATE_LIMIT"
	CodeTransport      = "TRANSPORT"
	CodeBackendTimeout = "BACKEND_TIMEOUT"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL"
)

// Code maps an error to its wire code. Unknown errors are internal.
func Code(err error) string {
	var (
		validation ValidationError
		authz      AuthorizationError
		capacity   CapacityError
		rate       RateLimitError
		transport  TransportError
		backend    BackendTimeoutError
	)
	switch {
	case errors.As(err, &validation):
		return CodeValidation
	case errors.As(err, &authz):
		return CodeAuthorization
	case errors.As(err, &capacity):
		return CodeCapacity
	case errors.As(err, &rate):
		return CodeRateLimit
	case errors.As(err, &transport):
		return CodeTransport
	case errors.As(err, &backend):
		return CodeBackendTimeout
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrThreadNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
