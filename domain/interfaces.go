package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsernameOrEmail(ctx context.Context, login string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	SetEmailVerified(ctx context.Context, userID string) error
	SetMFAEnabled(ctx context.Context, userID string, enabled bool) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	FindByID(ctx context.Context, id string) (*Session, error)
	ListActive(ctx context.Context, userID string, now time.Time) ([]*Session, error)
	Touch(ctx context.Context, tokenHash string, at time.Time) error
	Revoke(ctx context.Context, id string) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAll(ctx context.Context, userID string, exceptTokenHash string) (int64, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuthTokenRepository persists single-use tokens. Redeem must be atomic:
// two concurrent redemptions of the same secret cannot both succeed.
type AuthTokenRepository interface {
	Create(ctx context.Context, token *AuthToken) error
	InvalidateUnused(ctx context.Context, userID, purpose string) (int64, error)
	Redeem(ctx context.Context, secret, purpose string, now time.Time) (*AuthToken, error)
}

// MFACodeRepository persists challenge codes with the same
// single-active-code invariant as AuthTokenRepository.
type MFACodeRepository interface {
	Create(ctx context.Context, code *MFACode) error
	InvalidateUnused(ctx context.Context, userID string) (int64, error)
	Consume(ctx context.Context, userID, code string, now time.Time) (bool, error)
}

// TrustedDeviceRepository persists remembered device fingerprints.
type TrustedDeviceRepository interface {
	Upsert(ctx context.Context, device *TrustedDevice) error
	FindByFingerprint(ctx context.Context, userID, fingerprint string) (*TrustedDevice, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, userID, id string) (bool, error)
	DeleteByFingerprint(ctx context.Context, fingerprint string) error
	DeleteAll(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, userID string, cutoff time.Time) error
	ListByUser(ctx context.Context, userID string) ([]*TrustedDevice, error)
}

// IdentityProvider verifies a username/password pair against one backend.
// Implementations fail closed: every internal failure mode surfaces as
// ErrInvalidCredentials, never as a transport or lookup error.
type IdentityProvider interface {
	Name() string
	Verify(ctx context.Context, username, password string) (*User, error)
}

// AuthService drives the login state machine.
type AuthService interface {
	Login(ctx context.Context, req *AuthRequest, meta *RequestMeta) (*AuthResult, error)
	VerifyMFA(ctx context.Context, pendingToken, code string, remember bool, deviceName string, meta *RequestMeta) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*User, *Session, error)
	Logout(ctx context.Context, token string, meta *RequestMeta) error
}

// AccountService owns registration and the single-use token lifecycle.
type AccountService interface {
	Register(ctx context.Context, username, email, fullName, password string, meta *RequestMeta) (*User, error)
	VerifyEmail(ctx context.Context, token string, meta *RequestMeta) error
	RequestPasswordReset(ctx context.Context, email string, meta *RequestMeta) error
	ResetPassword(ctx context.Context, token, newPassword string, meta *RequestMeta) error
	ChangePassword(ctx context.Context, user *User, currentPassword, newPassword string, meta *RequestMeta) error
	CheckPasswordStrength(password string) PasswordStrength
}

// MFAService issues and validates challenge codes and trusted devices.
type MFAService interface {
	IssueCode(ctx context.Context, user *User) error
	VerifyCode(ctx context.Context, userID, code string) (bool, error)
	IsTrusted(ctx context.Context, userID, fingerprint string) (bool, error)
	Trust(ctx context.Context, userID, deviceName, fingerprint string, meta *RequestMeta) (*TrustedDevice, error)
	RemoveDevice(ctx context.Context, userID, deviceID string) (bool, error)
	ListDevices(ctx context.Context, userID string) ([]*TrustedDevice, error)
	Enroll(ctx context.Context, user *User, password string, meta *RequestMeta) error
	Disable(ctx context.Context, user *User, password, code string, meta *RequestMeta) error
}

// SessionService exposes session maintenance over the repository.
type SessionService interface {
	Create(ctx context.Context, userID, accessToken string, rememberMe bool, meta *RequestMeta) (*Session, error)
	Validate(ctx context.Context, accessToken string) (*Session, error)
	Touch(ctx context.Context, accessToken string)
	Revoke(ctx context.Context, userID, sessionID string) (bool, error)
	RevokeByToken(ctx context.Context, accessToken string) error
	RevokeAll(ctx context.Context, userID, exceptToken string) (int64, error)
	List(ctx context.Context, userID string) ([]*Session, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// PasswordPolicy scores candidate passwords.
type PasswordPolicy interface {
	Check(password string) PasswordStrength
}

// TokenService mints and validates bearer tokens. Access and pending-MFA
// tokens share one encoding but carry a type marker under the signature;
// validation is scoped so one kind can never pass for the other.
type TokenService interface {
	GenerateAccessToken(userID string, rememberMe bool) (string, time.Duration, error)
	GeneratePendingToken(userID string, rememberMe bool) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidatePendingToken(token string) (*TokenClaims, error)
}

// TokenClaims represents validated bearer token claims
type TokenClaims struct {
	UserID     string `json:"sub"`
	TokenType  string `json:"typ"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
	RememberMe bool   `json:"rem,omitempty"`
}

// NotificationService delivers outbound mail. Delivery is a collaborator:
// the auth core only decides that a message must be sent.
type NotificationService interface {
	SendEmail(to, subject, body string) error
}

// RateLimiter gates the auth surface per client address.
type RateLimiter interface {
	Admit(addr string) (allowed bool, retryAfter time.Duration)
}

// RequestMeta carries client information extracted from the HTTP request.
type RequestMeta struct {
	IPAddress   string
	UserAgent   string
	Fingerprint string
}
