package models

import "errors"

// Error taxonomy shared by services and handlers. Handlers translate these
// with errors.Is into HTTP status codes; everything else surfaces as a 500.
var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller lacks the privilege for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNoEligibleAgent indicates the dispatcher found zero candidates for a
	// complaint's branch and line of business. Callers degrade gracefully:
	// the complaint stays unassigned and admins get notified.
	ErrNoEligibleAgent = errors.New("no eligible agent")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail indicates a user with the email already exists.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrValidation indicates a malformed or incomplete request payload.
	ErrValidation = errors.New("validation failed")
)
