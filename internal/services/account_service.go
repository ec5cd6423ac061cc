package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// AccountServiceImpl implements domain.AccountService: registration and
// the single-use token lifecycle for password reset and email
// verification.
type AccountServiceImpl struct {
	userRepo    domain.UserRepository
	tokenRepo   domain.AuthTokenRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	policy      domain.PasswordPolicy
	mailer      domain.NotificationService
	audit       domain.AuditLogger
	config      AccountConfig
}

// AccountConfig holds account lifecycle tunables.
type AccountConfig struct {
	LocalAuthEnabled     bool
	BaseURL              string
	ResetTokenTTL        time.Duration
	VerificationTokenTTL time.Duration
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo domain.UserRepository,
	tokenRepo domain.AuthTokenRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	policy domain.PasswordPolicy,
	mailer domain.NotificationService,
	audit domain.AuditLogger,
	config AccountConfig,
) domain.AccountService {
	return &AccountServiceImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		policy:      policy,
		mailer:      mailer,
		audit:       audit,
		config:      config,
	}
}

// Register implements domain.AccountService
func (s *AccountServiceImpl) Register(ctx context.Context, username, email, fullName, password string, meta *domain.RequestMeta) (*domain.User, error) {
	if !s.config.LocalAuthEnabled {
		return nil, domain.ErrLocalAuthDisabled
	}

	if strength := s.policy.Check(password); !strength.Valid {
		return nil, weakPasswordError(strength)
	}

	if existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username); err == nil && existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AuthMethod:    domain.AuthMethodLocal,
		PasswordHash:  hash,
		EmailVerified: false,
		IsActive:      true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID, domain.TokenPurposeEmailVerification, s.config.VerificationTokenTTL)
	if err != nil {
		return nil, err
	}

	verifyURL := fmt.Sprintf("%s/auth/verify-email?token=%s", s.config.BaseURL, token)
	body := fmt.Sprintf(
		"Welcome to PromptShare!\n\nPlease verify your email address by clicking the link below:\n%s\n\nThis link will expire in %d hours.\n\nIf you didn't create this account, please ignore this email.\n",
		verifyURL, int(s.config.VerificationTokenTTL.Hours()),
	)
	_ = s.mailer.SendEmail(user.Email, "Verify your PromptShare account", body)

	s.audit.Record(domain.NewAuditEvent(domain.UserRegisteredEvent, user.ID).WithMeta(meta))

	return user, nil
}

// VerifyEmail implements domain.AccountService
func (s *AccountServiceImpl) VerifyEmail(ctx context.Context, token string, meta *domain.RequestMeta) error {
	redeemed, err := s.tokenRepo.Redeem(ctx, token, domain.TokenPurposeEmailVerification, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("failed to redeem verification token: %w", err)
	}

	if err := s.userRepo.SetEmailVerified(ctx, redeemed.UserID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	s.audit.Record(domain.NewAuditEvent(domain.EmailVerifiedEvent, redeemed.UserID).WithMeta(meta))
	return nil
}

// RequestPasswordReset implements domain.AccountService. Always succeeds
// outwardly: an unknown or non-local email produces the same nil return
// as a real issue, so responses cannot be used for account enumeration.
func (s *AccountServiceImpl) RequestPasswordReset(ctx context.Context, email string, meta *domain.RequestMeta) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil || user.AuthMethod != domain.AuthMethodLocal {
		return nil
	}

	token, err := s.issueToken(ctx, user.ID, domain.TokenPurposePasswordReset, s.config.ResetTokenTTL)
	if err != nil {
		// Internal failure is logged via audit absence; the caller
		// still sees the uniform success response.
		return nil
	}

	resetURL := fmt.Sprintf("%s/password-reset?token=%s", s.config.BaseURL, token)
	body := fmt.Sprintf(
		"You requested a password reset for your PromptShare account.\n\nClick the link below to reset your password:\n%s\n\nThis link will expire in %d hours.\n\nIf you didn't request this, please ignore this email.\n",
		resetURL, int(s.config.ResetTokenTTL.Hours()),
	)
	_ = s.mailer.SendEmail(user.Email, "Reset your PromptShare password", body)

	s.audit.Record(domain.NewAuditEvent(domain.PasswordResetRequestedEvent, user.ID).WithMeta(meta))
	return nil
}

// ResetPassword implements domain.AccountService
func (s *AccountServiceImpl) ResetPassword(ctx context.Context, token, newPassword string, meta *domain.RequestMeta) error {
	if strength := s.policy.Check(newPassword); !strength.Valid {
		return weakPasswordError(strength)
	}

	redeemed, err := s.tokenRepo.Redeem(ctx, token, domain.TokenPurposePasswordReset, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("failed to redeem reset token: %w", err)
	}

	hash, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, redeemed.UserID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// A reset invalidates every existing session for the account.
	if _, err := s.sessionRepo.RevokeAll(ctx, redeemed.UserID, ""); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.audit.Record(domain.NewAuditEvent(domain.PasswordResetCompletedEvent, redeemed.UserID).WithMeta(meta))
	return nil
}

// ChangePassword implements domain.AccountService
func (s *AccountServiceImpl) ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string, meta *domain.RequestMeta) error {
	if !user.IsLocal() {
		return domain.ErrNotLocalAccount
	}
	if !s.passwordSvc.Verify(user.PasswordHash, currentPassword) {
		return domain.ErrInvalidCredentials
	}
	if strength := s.policy.Check(newPassword); !strength.Valid {
		return weakPasswordError(strength)
	}

	hash, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordHash = hash

	s.audit.Record(domain.NewAuditEvent(domain.PasswordChangedEvent, user.ID).WithMeta(meta))
	return nil
}

// CheckPasswordStrength implements domain.AccountService
func (s *AccountServiceImpl) CheckPasswordStrength(password string) domain.PasswordStrength {
	return s.policy.Check(password)
}

// issueToken invalidates prior unused tokens of the purpose, then
// persists a fresh unguessable secret.
func (s *AccountServiceImpl) issueToken(ctx context.Context, userID, purpose string, ttl time.Duration) (string, error) {
	if _, err := s.tokenRepo.InvalidateUnused(ctx, userID, purpose); err != nil {
		return "", fmt.Errorf("failed to invalidate previous tokens: %w", err)
	}

	secret, err := generateSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := &domain.AuthToken{
		UserID:    userID,
		Token:     secret,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return secret, nil
}

// generateSecret returns 32 bytes of crypto/rand entropy, URL-safe.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// weakPasswordError wraps ErrWeakPassword with the policy feedback so
// handlers can surface the remediation hints.
func weakPasswordError(strength domain.PasswordStrength) error {
	return &WeakPasswordError{Strength: strength}
}

// WeakPasswordError carries the policy verdict. It unwraps to
// domain.ErrWeakPassword.
type WeakPasswordError struct {
	Strength domain.PasswordStrength
}

func (e *WeakPasswordError) Error() string {
	return domain.ErrWeakPassword.Error()
}

func (e *WeakPasswordError) Unwrap() error {
	return domain.ErrWeakPassword
}
