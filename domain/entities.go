package domain

import "time"

// Auth methods a user account can carry.
const (
	AuthMethodLocal     = "local"
	AuthMethodDirectory = "directory"
)

// Single-use token purposes.
const (
	TokenPurposePasswordReset     = "password_reset"
	TokenPurposeEmailVerification = "email_verification"
)

// User represents a principal in the system
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	AuthMethod    string
	PasswordHash  string
	EmailVerified bool
	MFAEnabled    bool
	MFASecret     string
	IsActive      bool
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLocal reports whether the user authenticates with a locally stored hash.
func (u *User) IsLocal() bool {
	return u.AuthMethod == AuthMethodLocal && u.PasswordHash != ""
}

// DirectoryIdentity is the canonical identity a directory bind resolves to.
type DirectoryIdentity struct {
	Username string
	Email    string
	FullName string
}

// AuthRequest represents authentication credentials
type AuthRequest struct {
	Username   string
	Password   string
	RememberMe bool
}

// AuthResult represents the outcome of a login attempt.
// When MFARequired is true AccessToken holds the pending-MFA token,
// which only authorizes the MFA verification endpoint.
type AuthResult struct {
	User        *User
	AccessToken string
	TokenType   string
	MFARequired bool
	SessionID   string
	ExpiresIn   int64
}

// Session is the server-side record backing one issued access token.
type Session struct {
	ID           string
	UserID       string
	TokenHash    string
	DeviceInfo   string
	IPAddress    string
	IsActive     bool
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

// Valid reports whether the session is usable at the given instant.
func (s *Session) Valid(now time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(now)
}

// AuthToken is a single-use, expiring secret for password reset or
// email verification, discriminated by Purpose.
type AuthToken struct {
	ID        string
	UserID    string
	Token     string
	Purpose   string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// MFACode is a short-lived numeric challenge code.
type MFACode struct {
	ID        string
	UserID    string
	Code      string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TrustedDevice is a remembered client fingerprint that lets a user
// skip MFA until the trust window lapses.
type TrustedDevice struct {
	ID          string
	UserID      string
	Fingerprint string
	DeviceName  string
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
	LastUsed    time.Time
}

// PasswordStrength is the verdict of the password policy.
// Feedback is deliberately informative; weak-password rejection is the
// one failure class allowed to explain itself.
type PasswordStrength struct {
	Valid    bool
	Score    int
	Feedback []string
}
