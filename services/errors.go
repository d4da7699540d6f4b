package services

import "errors"

// Errors shared across services and mapped to HTTP statuses in handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed = errors.New("validation failed")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrNegativeScore    = errors.New("predicted scores must not be negative")
	ErrMatchClosed      = errors.New("match is no longer open for predictions")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordNotSet     = errors.New("account has no password yet, use the first-login flow")
	ErrPasswordAlreadySet = errors.New("account already has a password, use the normal login")
	ErrEmailMismatch      = errors.New("email address does not match this account")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Conflicts
	ErrEmailConflict = errors.New("email address is already in use")

	// Entity-specific not-found (more context than the generic ErrNotFound)
	ErrUserNotFound       = errors.New("user not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrNoUpcomingMatch    = errors.New("no upcoming match")
)
