package domain

import (
	"fmt"
	"strings"
)

// ErrValidation is bad local input, reported before any backend call.
type ErrValidation struct {
	Reason  string   `json:"reason"`
	Details []string `json:"details,omitempty"`
}

func NewErrValidation(reason string, details ...string) *ErrValidation {
	return &ErrValidation{Reason: reason, Details: details}
}

func (e *ErrValidation) Error() string {
	if len(e.Details) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Details, "; "))
}

// ErrAuthorization is returned when an authenticated identity is not an admin.
type ErrAuthorization struct {
	Email string `json:"-"`
}

func (e *ErrAuthorization) Error() string {
	return "You do not have admin access. Please sign in with an allowed account."
}

// ErrAuthentication is returned when a request carries no usable admin session.
type ErrAuthentication struct {
	Reason string `json:"reason"`
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("authentication required: %s", e.Reason)
}

// ErrNotFound is returned when a record does not exist.
type ErrNotFound struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Type, e.ID)
}

// ErrTransientBackend wraps any store, auth or object-store failure.
// Message is safe to show to users; Err keeps the cause for logs.
type ErrTransientBackend struct {
	Op      string
	Message string
	Err     error
}

func (e *ErrTransientBackend) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrTransientBackend) Unwrap() error { return e.Err }
