package reconciler

import (
	"errors"
	"fmt"
)

// Error kinds for everything the engine can surface to a caller. The kind is
// what a UI layer switches on to choose a user-visible message; transport
// internals stay inside Err.
const (
	KindValidation        = "VALIDATION_ERROR"
	KindAuthRequired      = "AUTH_REQUIRED"
	KindDanglingReference = "DANGLING_REFERENCE"
	KindNetwork           = "NETWORK_ERROR"
	KindServerRejection   = "SERVER_REJECTION"
)

// Error is the engine's error type: a kind, a short human-readable message,
// and the underlying cause when one exists.
type Error struct {
	Kind    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an engine error.
func NewError(kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind string) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Retryable reports whether the failure is worth retrying as-is. Network
// failures are; validation, auth and server rejections are not.
func Retryable(err error) bool {
	return IsKind(err, KindNetwork)
}
