package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrLocalAuthDisabled  = errors.New("local authentication is not enabled")
	ErrNotLocalAccount    = errors.New("operation requires a local account")
)

// Token errors. A single sentinel per category on purpose: callers must
// not be able to distinguish expired from already-used from never-existed.
var (
	ErrTokenInvalid   = errors.New("invalid or expired token")
	ErrTokenMalformed = errors.New("malformed token")
	ErrCodeInvalid    = errors.New("invalid or expired code")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInvalid  = errors.New("session invalid or expired")
)

// MFA errors
var (
	ErrMFANotEnabled = errors.New("mfa is not enabled for this account")
)

// Policy errors
var (
	ErrWeakPassword = errors.New("password does not meet requirements")
)
