package mocks

import (
	"context"

	"github.com/promptshare/authsvc/domain"
)

// MockSessionService implements domain.SessionService interface for testing
type MockSessionService struct {
	CreateFunc        func(ctx context.Context, userID, accessToken string, rememberMe bool, meta *domain.RequestMeta) (*domain.Session, error)
	ValidateFunc      func(ctx context.Context, accessToken string) (*domain.Session, error)
	TouchFunc         func(ctx context.Context, accessToken string)
	RevokeFunc        func(ctx context.Context, userID, sessionID string) (bool, error)
	RevokeByTokenFunc func(ctx context.Context, accessToken string) error
	RevokeAllFunc     func(ctx context.Context, userID, exceptToken string) (int64, error)
	ListFunc          func(ctx context.Context, userID string) ([]*domain.Session, error)
	SweepExpiredFunc  func(ctx context.Context) (int64, error)
}

// NewMockSessionService creates a new MockSessionService with default behaviors
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

func (m *MockSessionService) Create(ctx context.Context, userID, accessToken string, rememberMe bool, meta *domain.RequestMeta) (*domain.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, accessToken, rememberMe, meta)
	}
	// Default behavior: a minimal valid session
	return &domain.Session{ID: "session_" + userID, UserID: userID, IsActive: true}, nil
}

func (m *MockSessionService) Validate(ctx context.Context, accessToken string) (*domain.Session, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, accessToken)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionService) Touch(ctx context.Context, accessToken string) {
	if m.TouchFunc != nil {
		m.TouchFunc(ctx, accessToken)
	}
}

func (m *MockSessionService) Revoke(ctx context.Context, userID, sessionID string) (bool, error) {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, userID, sessionID)
	}
	// Default behavior: nothing revoked
	return false, nil
}

func (m *MockSessionService) RevokeByToken(ctx context.Context, accessToken string) error {
	if m.RevokeByTokenFunc != nil {
		return m.RevokeByTokenFunc(ctx, accessToken)
	}
	// Default behavior: success
	return nil
}

func (m *MockSessionService) RevokeAll(ctx context.Context, userID, exceptToken string) (int64, error) {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID, exceptToken)
	}
	// Default behavior: nothing revoked
	return 0, nil
}

func (m *MockSessionService) List(ctx context.Context, userID string) ([]*domain.Session, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	// Default behavior: empty list
	return nil, nil
}

func (m *MockSessionService) SweepExpired(ctx context.Context) (int64, error) {
	if m.SweepExpiredFunc != nil {
		return m.SweepExpiredFunc(ctx)
	}
	// Default behavior: nothing swept
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.SessionService = (*MockSessionService)(nil)

// MockMFAService implements domain.MFAService interface for testing
type MockMFAService struct {
	IssueCodeFunc    func(ctx context.Context, user *domain.User) error
	VerifyCodeFunc   func(ctx context.Context, userID, code string) (bool, error)
	IsTrustedFunc    func(ctx context.Context, userID, fingerprint string) (bool, error)
	TrustFunc        func(ctx context.Context, userID, deviceName, fingerprint string, meta *domain.RequestMeta) (*domain.TrustedDevice, error)
	RemoveDeviceFunc func(ctx context.Context, userID, deviceID string) (bool, error)
	ListDevicesFunc  func(ctx context.Context, userID string) ([]*domain.TrustedDevice, error)
	EnrollFunc       func(ctx context.Context, user *domain.User, password string, meta *domain.RequestMeta) error
	DisableFunc      func(ctx context.Context, user *domain.User, password, code string, meta *domain.RequestMeta) error
}

// NewMockMFAService creates a new MockMFAService with default behaviors
func NewMockMFAService() *MockMFAService {
	return &MockMFAService{}
}

func (m *MockMFAService) IssueCode(ctx context.Context, user *domain.User) error {
	if m.IssueCodeFunc != nil {
		return m.IssueCodeFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

func (m *MockMFAService) VerifyCode(ctx context.Context, userID, code string) (bool, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, userID, code)
	}
	// Default behavior: no matching code
	return false, nil
}

func (m *MockMFAService) IsTrusted(ctx context.Context, userID, fingerprint string) (bool, error) {
	if m.IsTrustedFunc != nil {
		return m.IsTrustedFunc(ctx, userID, fingerprint)
	}
	// Default behavior: untrusted
	return false, nil
}

func (m *MockMFAService) Trust(ctx context.Context, userID, deviceName, fingerprint string, meta *domain.RequestMeta) (*domain.TrustedDevice, error) {
	if m.TrustFunc != nil {
		return m.TrustFunc(ctx, userID, deviceName, fingerprint, meta)
	}
	// Default behavior: success
	return &domain.TrustedDevice{UserID: userID, Fingerprint: fingerprint, DeviceName: deviceName}, nil
}

func (m *MockMFAService) RemoveDevice(ctx context.Context, userID, deviceID string) (bool, error) {
	if m.RemoveDeviceFunc != nil {
		return m.RemoveDeviceFunc(ctx, userID, deviceID)
	}
	// Default behavior: nothing removed
	return false, nil
}

func (m *MockMFAService) ListDevices(ctx context.Context, userID string) ([]*domain.TrustedDevice, error) {
	if m.ListDevicesFunc != nil {
		return m.ListDevicesFunc(ctx, userID)
	}
	// Default behavior: empty list
	return nil, nil
}

func (m *MockMFAService) Enroll(ctx context.Context, user *domain.User, password string, meta *domain.RequestMeta) error {
	if m.EnrollFunc != nil {
		return m.EnrollFunc(ctx, user, password, meta)
	}
	// Default behavior: success
	return nil
}

func (m *MockMFAService) Disable(ctx context.Context, user *domain.User, password, code string, meta *domain.RequestMeta) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, user, password, code, meta)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.MFAService = (*MockMFAService)(nil)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	LoginFunc        func(ctx context.Context, req *domain.AuthRequest, meta *domain.RequestMeta) (*domain.AuthResult, error)
	VerifyMFAFunc    func(ctx context.Context, pendingToken, code string, remember bool, deviceName string, meta *domain.RequestMeta) (*domain.AuthResult, error)
	AuthenticateFunc func(ctx context.Context, token string) (*domain.User, *domain.Session, error)
	LogoutFunc       func(ctx context.Context, token string, meta *domain.RequestMeta) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Login(ctx context.Context, req *domain.AuthRequest, meta *domain.RequestMeta) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req, meta)
	}
	// Default behavior: reject
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) VerifyMFA(ctx context.Context, pendingToken, code string, remember bool, deviceName string, meta *domain.RequestMeta) (*domain.AuthResult, error) {
	if m.VerifyMFAFunc != nil {
		return m.VerifyMFAFunc(ctx, pendingToken, code, remember, deviceName, meta)
	}
	// Default behavior: invalid token
	return nil, domain.ErrTokenInvalid
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	// Default behavior: invalid token
	return nil, nil, domain.ErrTokenInvalid
}

func (m *MockAuthService) Logout(ctx context.Context, token string, meta *domain.RequestMeta) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token, meta)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)

// MockAccountService implements domain.AccountService interface for testing
type MockAccountService struct {
	RegisterFunc              func(ctx context.Context, username, email, fullName, password string, meta *domain.RequestMeta) (*domain.User, error)
	VerifyEmailFunc           func(ctx context.Context, token string, meta *domain.RequestMeta) error
	RequestPasswordResetFunc  func(ctx context.Context, email string, meta *domain.RequestMeta) error
	ResetPasswordFunc         func(ctx context.Context, token, newPassword string, meta *domain.RequestMeta) error
	ChangePasswordFunc        func(ctx context.Context, user *domain.User, currentPassword, newPassword string, meta *domain.RequestMeta) error
	CheckPasswordStrengthFunc func(password string) domain.PasswordStrength
}

// NewMockAccountService creates a new MockAccountService with default behaviors
func NewMockAccountService() *MockAccountService {
	return &MockAccountService{}
}

func (m *MockAccountService) Register(ctx context.Context, username, email, fullName, password string, meta *domain.RequestMeta) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, email, fullName, password, meta)
	}
	// Default behavior: echo a created user
	return &domain.User{ID: "user_1", Username: username, Email: email, FullName: fullName}, nil
}

func (m *MockAccountService) VerifyEmail(ctx context.Context, token string, meta *domain.RequestMeta) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token, meta)
	}
	// Default behavior: success
	return nil
}

func (m *MockAccountService) RequestPasswordReset(ctx context.Context, email string, meta *domain.RequestMeta) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email, meta)
	}
	// Default behavior: success
	return nil
}

func (m *MockAccountService) ResetPassword(ctx context.Context, token, newPassword string, meta *domain.RequestMeta) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword, meta)
	}
	// Default behavior: success
	return nil
}

func (m *MockAccountService) ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string, meta *domain.RequestMeta) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, user, currentPassword, newPassword, meta)
	}
	// Default behavior: success
	return nil
}

func (m *MockAccountService) CheckPasswordStrength(password string) domain.PasswordStrength {
	if m.CheckPasswordStrengthFunc != nil {
		return m.CheckPasswordStrengthFunc(password)
	}
	// Default behavior: everything passes
	return domain.PasswordStrength{Valid: true, Score: 4}
}

// Compile-time interface compliance verification
var _ domain.AccountService = (*MockAccountService)(nil)
