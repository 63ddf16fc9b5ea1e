// Package common defines shared constants and sentinel errors used across
// the PetNest server layers. Callers should use errors.Is to match these
// values and errors.As to extract a UserError.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level error kinds. Each maps to one HTTP status in the REST layer.
	ErrorInternal      = errors.New("internal error")
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")

	// Token verification errors.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

// UserError is an error whose message is safe to show to the API client.
// Kind is one of the service-level sentinels above.
type UserError struct {
	Kind    error
	Message string
}

// NewUserError builds a UserError of the given kind.
func NewUserError(kind error, message string) *UserError {
	return &UserError{Kind: kind, Message: message}
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Kind }
