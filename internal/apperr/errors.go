// Package apperr carries the domain error taxonomy shared by the storage,
// lifecycle and identity layers. Handlers map codes onto HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

// Error is a coded domain error. Code identifies the failure class, Message
// is safe to surface to the caller.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeAuth              = "AUTH"
	CodeUnavailable       = "UNAVAILABLE"
)

// NewValidation reports caller-supplied data failing a precondition.
func NewValidation(msg string) error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NewNotFound reports an absent entity. Not found is an expected outcome in
// list/detail views, never a hard failure.
func NewNotFound(msg string) error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NewPermissionDenied reports a failed role check.
func NewPermissionDenied(msg string) error {
	return &Error{Code: CodePermissionDenied, Message: msg}
}

// NewInvalidTransition reports a lifecycle precondition failure.
func NewInvalidTransition(msg string) error {
	return &Error{Code: CodeInvalidTransition, Message: msg}
}

// NewUnauthenticated reports a missing or invalid session token.
func NewUnauthenticated(msg string) error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// NewAuth reports a failure inside the external authentication service.
func NewAuth(msg string) error {
	return &Error{Code: CodeAuth, Message: msg}
}

// NewUnavailable reports an unreachable external dependency, keeping the
// underlying error in the chain.
func NewUnavailable(msg string, cause error) error {
	return &Error{Code: CodeUnavailable, Message: msg, cause: cause}
}

// CodeOf extracts the taxonomy code from err, unwrapping as needed. Errors
// outside the taxonomy report CodeUnavailable since they only arise from
// external dependencies.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnavailable
}

// HasCode reports whether err carries the given taxonomy code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsNotFound is a convenience check for the most common expected outcome.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
