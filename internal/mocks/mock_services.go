package mocks

import (
	"context"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// MockPasswordService implements domain.PasswordService interface for testing
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

// NewMockPasswordService creates a new MockPasswordService with default behaviors
func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	// Default behavior: a recognizable fake hash
	return "hashed_" + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	// Default behavior: matches the fake hash format
	return hashedPassword == "hashed_"+password
}

// Compile-time interface compliance verification
var _ domain.PasswordService = (*MockPasswordService)(nil)

// MockPasswordPolicy implements domain.PasswordPolicy interface for testing
type MockPasswordPolicy struct {
	CheckFunc func(password string) domain.PasswordStrength
}

// NewMockPasswordPolicy creates a new MockPasswordPolicy with default behaviors
func NewMockPasswordPolicy() *MockPasswordPolicy {
	return &MockPasswordPolicy{}
}

func (m *MockPasswordPolicy) Check(password string) domain.PasswordStrength {
	if m.CheckFunc != nil {
		return m.CheckFunc(password)
	}
	// Default behavior: everything passes
	return domain.PasswordStrength{Valid: true, Score: 4}
}

// Compile-time interface compliance verification
var _ domain.PasswordPolicy = (*MockPasswordPolicy)(nil)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	GenerateAccessTokenFunc  func(userID string, rememberMe bool) (string, time.Duration, error)
	GeneratePendingTokenFunc func(userID string, rememberMe bool) (string, error)
	ValidateAccessTokenFunc  func(token string) (*domain.TokenClaims, error)
	ValidatePendingTokenFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) GenerateAccessToken(userID string, rememberMe bool) (string, time.Duration, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, rememberMe)
	}
	// Default behavior: a recognizable fake token
	return "access_token_" + userID, time.Hour, nil
}

func (m *MockTokenService) GeneratePendingToken(userID string, rememberMe bool) (string, error) {
	if m.GeneratePendingTokenFunc != nil {
		return m.GeneratePendingTokenFunc(userID, rememberMe)
	}
	// Default behavior: a recognizable fake token
	return "pending_token_" + userID, nil
}

func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	// Default behavior: invalid
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) ValidatePendingToken(token string) (*domain.TokenClaims, error) {
	if m.ValidatePendingTokenFunc != nil {
		return m.ValidatePendingTokenFunc(token)
	}
	// Default behavior: invalid
	return nil, domain.ErrTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	SendEmailFunc func(to, subject, body string) error

	// Sent records every delivery for assertions when SendEmailFunc is nil.
	Sent []SentEmail
}

// SentEmail is one recorded delivery.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(to, subject, body)
	}
	// Default behavior: record and succeed
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)

// MockAuditLogger implements domain.AuditLogger interface for testing
type MockAuditLogger struct {
	RecordFunc func(event *domain.AuditEvent)

	// Events records everything when RecordFunc is nil.
	Events []*domain.AuditEvent
}

// NewMockAuditLogger creates a new MockAuditLogger with default behaviors
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

func (m *MockAuditLogger) Record(event *domain.AuditEvent) {
	if m.RecordFunc != nil {
		m.RecordFunc(event)
		return
	}
	// Default behavior: record for assertions
	m.Events = append(m.Events, event)
}

// Has reports whether an event of the given type was recorded.
func (m *MockAuditLogger) Has(eventType domain.AuditEventType) bool {
	for _, e := range m.Events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

// Compile-time interface compliance verification
var _ domain.AuditLogger = (*MockAuditLogger)(nil)

// MockIdentityProvider implements domain.IdentityProvider interface for testing
type MockIdentityProvider struct {
	NameValue  string
	VerifyFunc func(ctx context.Context, username, password string) (*domain.User, error)
}

// NewMockIdentityProvider creates a provider with the given name
func NewMockIdentityProvider(name string) *MockIdentityProvider {
	return &MockIdentityProvider{NameValue: name}
}

func (m *MockIdentityProvider) Name() string {
	return m.NameValue
}

func (m *MockIdentityProvider) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, username, password)
	}
	// Default behavior: reject
	return nil, domain.ErrInvalidCredentials
}

// Compile-time interface compliance verification
var _ domain.IdentityProvider = (*MockIdentityProvider)(nil)
