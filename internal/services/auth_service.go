package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// AuthServiceImpl implements domain.AuthService. It drives the login
// state machine: credential verification through the provider chain,
// the deferred-MFA detour, and session issuance.
type AuthServiceImpl struct {
	providers  []domain.IdentityProvider
	userRepo   domain.UserRepository
	sessionSvc domain.SessionService
	tokenSvc   domain.TokenService
	mfaSvc     domain.MFAService
	audit      domain.AuditLogger
	mfaEnabled bool
}

// NewAuthService creates a new auth service. Providers are tried in
// order; the first success wins.
func NewAuthService(
	providers []domain.IdentityProvider,
	userRepo domain.UserRepository,
	sessionSvc domain.SessionService,
	tokenSvc domain.TokenService,
	mfaSvc domain.MFAService,
	audit domain.AuditLogger,
	mfaEnabled bool,
) domain.AuthService {
	return &AuthServiceImpl{
		providers:  providers,
		userRepo:   userRepo,
		sessionSvc: sessionSvc,
		tokenSvc:   tokenSvc,
		mfaSvc:     mfaSvc,
		audit:      audit,
		mfaEnabled: mfaEnabled,
	}
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, req *domain.AuthRequest, meta *domain.RequestMeta) (*domain.AuthResult, error) {
	var user *domain.User
	var method string

	for _, provider := range s.providers {
		verified, err := provider.Verify(ctx, req.Username, req.Password)
		if err != nil {
			continue
		}
		method = provider.Name()
		if method == domain.AuthMethodDirectory {
			verified, err = s.upsertDirectoryUser(ctx, verified)
			if err != nil {
				continue
			}
		}
		user = verified
		break
	}

	if user == nil {
		s.audit.Record(domain.NewAuditEvent(domain.LoginFailedEvent, "").
			WithMeta(meta).WithDetails("username=" + req.Username))
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.audit.Record(domain.NewAuditEvent(domain.LoginBlockedInactiveEvent, user.ID).WithMeta(meta))
		return nil, domain.ErrUserInactive
	}

	if s.requiresMFA(ctx, user, meta) {
		if err := s.mfaSvc.IssueCode(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to issue mfa code: %w", err)
		}
		pendingToken, err := s.tokenSvc.GeneratePendingToken(user.ID, req.RememberMe)
		if err != nil {
			return nil, fmt.Errorf("failed to generate pending token: %w", err)
		}

		s.audit.Record(domain.NewAuditEvent(domain.MFAChallengeSentEvent, user.ID).WithMeta(meta))

		return &domain.AuthResult{
			User:        user,
			AccessToken: pendingToken,
			TokenType:   "bearer",
			MFARequired: true,
		}, nil
	}

	return s.issueSession(ctx, user, req.RememberMe, "method="+method, meta)
}

// VerifyMFA implements domain.AuthService
func (s *AuthServiceImpl) VerifyMFA(ctx context.Context, pendingToken, code string, remember bool, deviceName string, meta *domain.RequestMeta) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.ValidatePendingToken(pendingToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, domain.ErrTokenInvalid
	}
	if !user.MFAEnabled {
		return nil, domain.ErrMFANotEnabled
	}

	ok, err := s.mfaSvc.VerifyCode(ctx, user.ID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		s.audit.Record(domain.NewAuditEvent(domain.MFAVerificationFailedEvent, user.ID).WithMeta(meta))
		return nil, domain.ErrCodeInvalid
	}

	if remember && meta != nil && meta.Fingerprint != "" {
		name := deviceName
		if name == "" {
			name = "Device from " + orUnknown(meta.IPAddress)
		}
		if _, terr := s.mfaSvc.Trust(ctx, user.ID, name, meta.Fingerprint, meta); terr != nil {
			// Trust failure degrades to asking for MFA next time.
			log.Printf("failed to trust device for %s: %v", user.ID, terr)
		}
	}

	s.audit.Record(domain.NewAuditEvent(domain.MFAVerificationOKEvent, user.ID).WithMeta(meta))

	return s.issueSession(ctx, user, claims.RememberMe, "completed_with_mfa", meta)
}

// Authenticate implements domain.AuthService: the single contract every
// authenticated endpoint consumes. A valid token signature alone is not
// enough; the backing session must still be active and unexpired.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	claims, err := s.tokenSvc.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, domain.ErrTokenInvalid
	}

	session, err := s.sessionSvc.Validate(ctx, token)
	if err != nil {
		return nil, nil, domain.ErrSessionInvalid
	}
	if session.UserID != claims.UserID {
		return nil, nil, domain.ErrSessionInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, nil, domain.ErrSessionInvalid
	}

	s.sessionSvc.Touch(ctx, token)

	return user, session, nil
}

// Logout implements domain.AuthService. Idempotent.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string, meta *domain.RequestMeta) error {
	claims, err := s.tokenSvc.ValidateAccessToken(token)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	if err := s.sessionSvc.RevokeByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.audit.Record(domain.NewAuditEvent(domain.LogoutEvent, claims.UserID).WithMeta(meta))
	return nil
}

// requiresMFA decides whether the verified login must detour through a
// challenge. A non-expired trusted device match skips it.
func (s *AuthServiceImpl) requiresMFA(ctx context.Context, user *domain.User, meta *domain.RequestMeta) bool {
	if !s.mfaEnabled || !user.MFAEnabled {
		return false
	}
	if meta != nil && meta.Fingerprint != "" {
		trusted, err := s.mfaSvc.IsTrusted(ctx, user.ID, meta.Fingerprint)
		if err == nil && trusted {
			return false
		}
	}
	return true
}

// issueSession mints a full access token, creates the backing session
// row and stamps LastLogin.
func (s *AuthServiceImpl) issueSession(ctx context.Context, user *domain.User, rememberMe bool, details string, meta *domain.RequestMeta) (*domain.AuthResult, error) {
	accessToken, ttl, err := s.tokenSvc.GenerateAccessToken(user.ID, rememberMe)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	session, err := s.sessionSvc.Create(ctx, user.ID, accessToken, rememberMe, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err == nil {
		user.LastLogin = &now
	}

	s.audit.Record(domain.NewAuditEvent(domain.LoginSuccessEvent, user.ID).
		WithMeta(meta).WithDetails(details))

	return &domain.AuthResult{
		User:        user,
		AccessToken: accessToken,
		TokenType:   "bearer",
		MFARequired: false,
		SessionID:   session.ID,
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

// upsertDirectoryUser persists a directory-verified identity, creating
// the record on first bind. Directory identities never carry a hash.
func (s *AuthServiceImpl) upsertDirectoryUser(ctx context.Context, identity *domain.User) (*domain.User, error) {
	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, identity.Username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		if err := s.userRepo.Create(ctx, identity); err != nil {
			return nil, err
		}
		return identity, nil
	}

	existing.Email = identity.Email
	existing.FullName = identity.FullName
	if err := s.userRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
