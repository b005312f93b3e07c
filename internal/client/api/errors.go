package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the remote boundary.
type Kind int

const (
	// KindAuthentication: missing, invalid or expired credential.
	KindAuthentication Kind = iota
	// KindAuthorization: authenticated, but the wrong role for the request.
	KindAuthorization
	// KindTransient: timeout or connection failure, eligible for retry.
	KindTransient
	// KindValidation: malformed payload from the remote.
	KindValidation
	// KindApplication: well-formed rejection from the remote, surfaced verbatim.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Error is the structured failure type of the remote boundary. Retryable is
// set by the transport layer so callers never classify by message text.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same Kind, enabling errors.Is against the
// kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is matching.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrTransient      = &Error{Kind: KindTransient}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrApplication    = &Error{Kind: KindApplication}
)

// NewAuthenticationError reports a rejected or missing credential.
func NewAuthenticationError(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// NewAuthorizationError reports a role violation detected locally.
func NewAuthorizationError(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// NewTransientError wraps a timeout or connection failure. Retryable is set.
func NewTransientError(cause error) *Error {
	return &Error{Kind: KindTransient, Retryable: true, cause: cause}
}

// NewValidationError reports a malformed remote payload.
func NewValidationError(msg string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: msg, cause: cause}
}

// NewApplicationError carries the remote's own rejection message verbatim.
func NewApplicationError(msg string) *Error {
	return &Error{Kind: KindApplication, Message: msg}
}

// IsRetryable reports whether err is a failure the caller may retry.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}
