package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/promptshare/authsvc/domain"
	"github.com/promptshare/authsvc/internal/mocks"
)

func activeLocalUser() *domain.User {
	return &domain.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		AuthMethod:   domain.AuthMethodLocal,
		PasswordHash: "hashed_secret",
		IsActive:     true,
	}
}

type authFixture struct {
	provider   *mocks.MockIdentityProvider
	userRepo   *mocks.MockUserRepository
	sessionSvc *mocks.MockSessionService
	tokenSvc   *mocks.MockTokenService
	mfaSvc     *mocks.MockMFAService
	audit      *mocks.MockAuditLogger
}

func newAuthFixture(mfaEnabled bool) (*authFixture, domain.AuthService) {
	f := &authFixture{
		provider:   mocks.NewMockIdentityProvider(domain.AuthMethodLocal),
		userRepo:   mocks.NewMockUserRepository(),
		sessionSvc: mocks.NewMockSessionService(),
		tokenSvc:   mocks.NewMockTokenService(),
		mfaSvc:     mocks.NewMockMFAService(),
		audit:      mocks.NewMockAuditLogger(),
	}
	svc := NewAuthService(
		[]domain.IdentityProvider{f.provider},
		f.userRepo, f.sessionSvc, f.tokenSvc, f.mfaSvc, f.audit,
		mfaEnabled,
	)
	return f, svc
}

func TestLogin(t *testing.T) {
	meta := &domain.RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test"}

	tests := []struct {
		name          string
		req           *domain.AuthRequest
		mfaEnabled    bool
		setup         func(f *authFixture)
		wantErr       error
		wantMFA       bool
		wantAuditType domain.AuditEventType
	}{
		{
			name:       "successful login without mfa",
			req:        &domain.AuthRequest{Username: "alice", Password: "secret"},
			mfaEnabled: true,
			setup: func(f *authFixture) {
				f.provider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
					return activeLocalUser(), nil
				}
			},
			wantAuditType: domain.LoginSuccessEvent,
		},
		{
			name:       "wrong password",
			req:        &domain.AuthRequest{Username: "alice", Password: "nope"},
			mfaEnabled: true,
			setup: func(f *authFixture) {
				f.provider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
					return nil, domain.ErrInvalidCredentials
				}
			},
			wantErr:       domain.ErrInvalidCredentials,
			wantAuditType: domain.LoginFailedEvent,
		},
		{
			name:       "unknown user",
			req:        &domain.AuthRequest{Username: "nobody", Password: "secret"},
			mfaEnabled: true,
			setup:      func(f *authFixture) {},
			wantErr:    domain.ErrInvalidCredentials,
		},
		{
			name:       "inactive account with valid credentials",
			req:        &domain.AuthRequest{Username: "alice", Password: "secret"},
			mfaEnabled: true,
			setup: func(f *authFixture) {
				f.provider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
					user := activeLocalUser()
					user.IsActive = false
					return user, nil
				}
			},
			wantErr:       domain.ErrUserInactive,
			wantAuditType: domain.LoginBlockedInactiveEvent,
		},
		{
			name:       "mfa user gets pending token",
			req:        &domain.AuthRequest{Username: "alice", Password: "secret"},
			mfaEnabled: true,
			setup: func(f *authFixture) {
				f.provider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
					user := activeLocalUser()
					user.MFAEnabled = true
					return user, nil
				}
			},
			wantMFA:       true,
			wantAuditType: domain.MFAChallengeSentEvent,
		},
		{
			name:       "mfa skipped when globally disabled",
			req:        &domain.AuthRequest{Username: "alice", Password: "secret"},
			mfaEnabled: false,
			setup: func(f *authFixture) {
				f.provider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
					user := activeLocalUser()
					user.MFAEnabled = true
					return user, nil
				}
			},
			wantAuditType: domain.LoginSuccessEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc := newAuthFixture(tt.mfaEnabled)
			tt.setup(f)

			result, err := svc.Login(context.Background(), tt.req, meta)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Login() error = %v", err)
				}
				if result.MFARequired != tt.wantMFA {
					t.Errorf("MFARequired = %v, want %v", result.MFARequired, tt.wantMFA)
				}
				if result.AccessToken == "" {
					t.Error("AccessToken should not be empty")
				}
			}

			if tt.wantAuditType != "" && !f.audit.Has(tt.wantAuditType) {
				t.Errorf("expected audit event %s, got %+v", tt.wantAuditType, f.audit.Events)
			}
		})
	}
}

func TestLoginTrustedDeviceSkipsMFA(t *testing.T) {
	f, svc := newAuthFixture(true)

	f.provider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
		user := activeLocalUser()
		user.MFAEnabled = true
		return user, nil
	}
	f.mfaSvc.IsTrustedFunc = func(ctx context.Context, userID, fingerprint string) (bool, error) {
		return fingerprint == "device-abc", nil
	}

	meta := &domain.RequestMeta{IPAddress: "10.0.0.1", Fingerprint: "device-abc"}
	result, err := svc.Login(context.Background(), &domain.AuthRequest{Username: "alice", Password: "secret"}, meta)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.MFARequired {
		t.Error("trusted device should skip the MFA challenge")
	}
	if !f.audit.Has(domain.LoginSuccessEvent) {
		t.Error("expected login_success audit event")
	}
}

func TestLoginRememberMeFlowsToSession(t *testing.T) {
	f, svc := newAuthFixture(false)

	f.provider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
		return activeLocalUser(), nil
	}

	var gotRemember bool
	f.sessionSvc.CreateFunc = func(ctx context.Context, userID, accessToken string, rememberMe bool, meta *domain.RequestMeta) (*domain.Session, error) {
		gotRemember = rememberMe
		return &domain.Session{ID: "s1", UserID: userID, IsActive: true}, nil
	}

	_, err := svc.Login(context.Background(), &domain.AuthRequest{Username: "alice", Password: "secret", RememberMe: true}, nil)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !gotRemember {
		t.Error("remember-me should reach session creation")
	}
}

func TestVerifyMFA(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		setup   func(f *authFixture)
		wantErr error
	}{
		{
			name: "successful verification",
			code: "123456",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidatePendingTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: "user-1", TokenType: "pending_mfa"}, nil
				}
				f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					user := activeLocalUser()
					user.MFAEnabled = true
					return user, nil
				}
				f.mfaSvc.VerifyCodeFunc = func(ctx context.Context, userID, code string) (bool, error) {
					return code == "123456", nil
				}
			},
		},
		{
			name: "invalid pending token",
			code: "123456",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidatePendingTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return nil, domain.ErrTokenInvalid
				}
			},
			wantErr: domain.ErrTokenInvalid,
		},
		{
			name: "wrong code",
			code: "000000",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidatePendingTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: "user-1", TokenType: "pending_mfa"}, nil
				}
				f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					user := activeLocalUser()
					user.MFAEnabled = true
					return user, nil
				}
				f.mfaSvc.VerifyCodeFunc = func(ctx context.Context, userID, code string) (bool, error) {
					return false, nil
				}
			},
			wantErr: domain.ErrCodeInvalid,
		},
		{
			name: "user deactivated between steps",
			code: "123456",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidatePendingTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: "user-1", TokenType: "pending_mfa"}, nil
				}
				f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					user := activeLocalUser()
					user.IsActive = false
					user.MFAEnabled = true
					return user, nil
				}
			},
			wantErr: domain.ErrTokenInvalid,
		},
		{
			name: "mfa disabled between steps",
			code: "123456",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidatePendingTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: "user-1", TokenType: "pending_mfa"}, nil
				}
				f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					return activeLocalUser(), nil
				}
			},
			wantErr: domain.ErrMFANotEnabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc := newAuthFixture(true)
			tt.setup(f)

			result, err := svc.VerifyMFA(context.Background(), "pending-token", tt.code, false, "", nil)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("VerifyMFA() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyMFA() error = %v", err)
			}
			if result.MFARequired {
				t.Error("MFARequired should be false after successful verification")
			}
			if !f.audit.Has(domain.MFAVerificationOKEvent) {
				t.Error("expected mfa_verification_success audit event")
			}
		})
	}
}

func TestVerifyMFARemembersDevice(t *testing.T) {
	f, svc := newAuthFixture(true)

	f.tokenSvc.ValidatePendingTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: "user-1", TokenType: "pending_mfa"}, nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
		user := activeLocalUser()
		user.MFAEnabled = true
		return user, nil
	}
	f.mfaSvc.VerifyCodeFunc = func(ctx context.Context, userID, code string) (bool, error) {
		return true, nil
	}

	var trustedFingerprint string
	f.mfaSvc.TrustFunc = func(ctx context.Context, userID, deviceName, fingerprint string, meta *domain.RequestMeta) (*domain.TrustedDevice, error) {
		trustedFingerprint = fingerprint
		return &domain.TrustedDevice{UserID: userID, Fingerprint: fingerprint}, nil
	}

	meta := &domain.RequestMeta{IPAddress: "10.0.0.1", Fingerprint: "device-abc"}
	if _, err := svc.VerifyMFA(context.Background(), "pending-token", "123456", true, "Work laptop", meta); err != nil {
		t.Fatalf("VerifyMFA() error = %v", err)
	}
	if trustedFingerprint != "device-abc" {
		t.Errorf("trusted fingerprint = %q, want device-abc", trustedFingerprint)
	}
}

func TestVerifyMFAPropagatesRememberMe(t *testing.T) {
	f, svc := newAuthFixture(true)

	f.tokenSvc.ValidatePendingTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: "user-1", TokenType: "pending_mfa", RememberMe: true}, nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
		user := activeLocalUser()
		user.MFAEnabled = true
		return user, nil
	}
	f.mfaSvc.VerifyCodeFunc = func(ctx context.Context, userID, code string) (bool, error) {
		return true, nil
	}

	var gotRemember bool
	f.sessionSvc.CreateFunc = func(ctx context.Context, userID, accessToken string, rememberMe bool, meta *domain.RequestMeta) (*domain.Session, error) {
		gotRemember = rememberMe
		return &domain.Session{ID: "s1", UserID: userID, IsActive: true}, nil
	}

	if _, err := svc.VerifyMFA(context.Background(), "pending-token", "123456", false, "", nil); err != nil {
		t.Fatalf("VerifyMFA() error = %v", err)
	}
	if !gotRemember {
		t.Error("remember-me from the pending token should reach session creation")
	}
}

func TestAuthenticate(t *testing.T) {
	validClaims := func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: "user-1", TokenType: "access"}, nil
	}
	validSession := func(ctx context.Context, accessToken string) (*domain.Session, error) {
		return &domain.Session{ID: "s1", UserID: "user-1", IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	activeUser := func(ctx context.Context, id string) (*domain.User, error) {
		return activeLocalUser(), nil
	}

	tests := []struct {
		name    string
		setup   func(f *authFixture)
		wantErr error
	}{
		{
			name: "valid token with live session",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidateAccessTokenFunc = validClaims
				f.sessionSvc.ValidateFunc = validSession
				f.userRepo.FindByIDFunc = activeUser
			},
		},
		{
			name: "bad signature",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return nil, domain.ErrTokenInvalid
				}
			},
			wantErr: domain.ErrTokenInvalid,
		},
		{
			name: "valid token but revoked session",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidateAccessTokenFunc = validClaims
				f.sessionSvc.ValidateFunc = func(ctx context.Context, accessToken string) (*domain.Session, error) {
					return nil, domain.ErrSessionInvalid
				}
			},
			wantErr: domain.ErrSessionInvalid,
		},
		{
			name: "session belongs to another user",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidateAccessTokenFunc = validClaims
				f.sessionSvc.ValidateFunc = func(ctx context.Context, accessToken string) (*domain.Session, error) {
					return &domain.Session{ID: "s1", UserID: "user-2", IsActive: true, ExpiresAt: time.Now().Add(time.Hour)}, nil
				}
				f.userRepo.FindByIDFunc = activeUser
			},
			wantErr: domain.ErrSessionInvalid,
		},
		{
			name: "user deactivated after issuance",
			setup: func(f *authFixture) {
				f.tokenSvc.ValidateAccessTokenFunc = validClaims
				f.sessionSvc.ValidateFunc = validSession
				f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					user := activeLocalUser()
					user.IsActive = false
					return user, nil
				}
			},
			wantErr: domain.ErrSessionInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc := newAuthFixture(true)
			tt.setup(f)

			user, session, err := svc.Authenticate(context.Background(), "some-token")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if user == nil || session == nil {
				t.Fatal("Authenticate() should return user and session")
			}
			if user.ID != session.UserID {
				t.Errorf("user %s does not own session for %s", user.ID, session.UserID)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	f, svc := newAuthFixture(true)

	f.tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: "user-1", TokenType: "access"}, nil
	}

	var revoked bool
	f.sessionSvc.RevokeByTokenFunc = func(ctx context.Context, accessToken string) error {
		revoked = true
		return nil
	}

	if err := svc.Logout(context.Background(), "some-token", nil); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if !revoked {
		t.Error("logout should revoke the backing session")
	}
	if !f.audit.Has(domain.LogoutEvent) {
		t.Error("expected logout audit event")
	}
}

func TestLoginUpsertsDirectoryUser(t *testing.T) {
	f, _ := newAuthFixture(false)
	dirProvider := mocks.NewMockIdentityProvider(domain.AuthMethodDirectory)
	svc := NewAuthService(
		[]domain.IdentityProvider{f.provider, dirProvider},
		f.userRepo, f.sessionSvc, f.tokenSvc, f.mfaSvc, f.audit,
		false,
	)

	dirProvider.VerifyFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
		return &domain.User{
			Username:      "bob",
			Email:         "bob@corp.example.com",
			FullName:      "Bob Builder",
			AuthMethod:    domain.AuthMethodDirectory,
			EmailVerified: true,
			IsActive:      true,
		}, nil
	}

	var created *domain.User
	f.userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
		user.ID = "user-new"
		created = user
		return nil
	}

	result, err := svc.Login(context.Background(), &domain.AuthRequest{Username: "bob", Password: "corp-password"}, nil)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if created == nil {
		t.Fatal("first directory login should create a local record")
	}
	if created.AuthMethod != domain.AuthMethodDirectory {
		t.Errorf("AuthMethod = %v, want directory", created.AuthMethod)
	}
	if result.User.Email != "bob@corp.example.com" {
		t.Errorf("Email = %v", result.User.Email)
	}
}
