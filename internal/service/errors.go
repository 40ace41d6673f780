package service

import "errors"

// Error taxonomy surfaced to handlers. Handlers map these onto HTTP codes;
// anything wrapping ErrUpstream is logged in detail and shown to the caller
// as a generic failure.
var (
	// ErrValidation marks a missing or blank required field.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both a genuinely absent row and a row owned by a
	// different user. The two are deliberately indistinguishable so an
	// attacker cannot probe for other users' resource IDs.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation, such as a duplicate
	// category name within one account.
	ErrConflict = errors.New("conflict")

	// ErrUpstream marks any other store failure.
	ErrUpstream = errors.New("store failure")
)

// Authentication failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOAuthOnlyAccount   = errors.New("account has no password; use Google sign-in")
	ErrAccountInactive    = errors.New("account is deactivated")
)
