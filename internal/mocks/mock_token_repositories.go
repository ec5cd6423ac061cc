package mocks

import (
	"context"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// MockAuthTokenRepository implements domain.AuthTokenRepository interface for testing
type MockAuthTokenRepository struct {
	CreateFunc           func(ctx context.Context, token *domain.AuthToken) error
	InvalidateUnusedFunc func(ctx context.Context, userID, purpose string) (int64, error)
	RedeemFunc           func(ctx context.Context, secret, purpose string, now time.Time) (*domain.AuthToken, error)
}

// NewMockAuthTokenRepository creates a new MockAuthTokenRepository with default behaviors
func NewMockAuthTokenRepository() *MockAuthTokenRepository {
	return &MockAuthTokenRepository{}
}

func (m *MockAuthTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	// Default behavior: success
	return nil
}

func (m *MockAuthTokenRepository) InvalidateUnused(ctx context.Context, userID, purpose string) (int64, error) {
	if m.InvalidateUnusedFunc != nil {
		return m.InvalidateUnusedFunc(ctx, userID, purpose)
	}
	// Default behavior: nothing invalidated
	return 0, nil
}

func (m *MockAuthTokenRepository) Redeem(ctx context.Context, secret, purpose string, now time.Time) (*domain.AuthToken, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, secret, purpose, now)
	}
	// Default behavior: invalid token
	return nil, domain.ErrTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.AuthTokenRepository = (*MockAuthTokenRepository)(nil)

// MockMFACodeRepository implements domain.MFACodeRepository interface for testing
type MockMFACodeRepository struct {
	CreateFunc           func(ctx context.Context, code *domain.MFACode) error
	InvalidateUnusedFunc func(ctx context.Context, userID string) (int64, error)
	ConsumeFunc          func(ctx context.Context, userID, code string, now time.Time) (bool, error)
}

// NewMockMFACodeRepository creates a new MockMFACodeRepository with default behaviors
func NewMockMFACodeRepository() *MockMFACodeRepository {
	return &MockMFACodeRepository{}
}

func (m *MockMFACodeRepository) Create(ctx context.Context, code *domain.MFACode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, code)
	}
	// Default behavior: success
	return nil
}

func (m *MockMFACodeRepository) InvalidateUnused(ctx context.Context, userID string) (int64, error) {
	if m.InvalidateUnusedFunc != nil {
		return m.InvalidateUnusedFunc(ctx, userID)
	}
	// Default behavior: nothing invalidated
	return 0, nil
}

func (m *MockMFACodeRepository) Consume(ctx context.Context, userID, code string, now time.Time) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, userID, code, now)
	}
	// Default behavior: no matching code
	return false, nil
}

// Compile-time interface compliance verification
var _ domain.MFACodeRepository = (*MockMFACodeRepository)(nil)

// MockTrustedDeviceRepository implements domain.TrustedDeviceRepository interface for testing
type MockTrustedDeviceRepository struct {
	UpsertFunc              func(ctx context.Context, device *domain.TrustedDevice) error
	FindByFingerprintFunc   func(ctx context.Context, userID, fingerprint string) (*domain.TrustedDevice, error)
	TouchLastUsedFunc       func(ctx context.Context, id string, at time.Time) error
	DeleteFunc              func(ctx context.Context, userID, id string) (bool, error)
	DeleteByFingerprintFunc func(ctx context.Context, fingerprint string) error
	DeleteAllFunc           func(ctx context.Context, userID string) error
	DeleteExpiredFunc       func(ctx context.Context, userID string, cutoff time.Time) error
	ListByUserFunc          func(ctx context.Context, userID string) ([]*domain.TrustedDevice, error)
}

// NewMockTrustedDeviceRepository creates a new MockTrustedDeviceRepository with default behaviors
func NewMockTrustedDeviceRepository() *MockTrustedDeviceRepository {
	return &MockTrustedDeviceRepository{}
}

func (m *MockTrustedDeviceRepository) Upsert(ctx context.Context, device *domain.TrustedDevice) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, device)
	}
	// Default behavior: success
	return nil
}

func (m *MockTrustedDeviceRepository) FindByFingerprint(ctx context.Context, userID, fingerprint string) (*domain.TrustedDevice, error) {
	if m.FindByFingerprintFunc != nil {
		return m.FindByFingerprintFunc(ctx, userID, fingerprint)
	}
	// Default behavior: not found
	return nil, nil
}

func (m *MockTrustedDeviceRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	if m.TouchLastUsedFunc != nil {
		return m.TouchLastUsedFunc(ctx, id, at)
	}
	// Default behavior: success
	return nil
}

func (m *MockTrustedDeviceRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	// Default behavior: nothing deleted
	return false, nil
}

func (m *MockTrustedDeviceRepository) DeleteByFingerprint(ctx context.Context, fingerprint string) error {
	if m.DeleteByFingerprintFunc != nil {
		return m.DeleteByFingerprintFunc(ctx, fingerprint)
	}
	// Default behavior: success
	return nil
}

func (m *MockTrustedDeviceRepository) DeleteAll(ctx context.Context, userID string) error {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx, userID)
	}
	// Default behavior: success
	return nil
}

func (m *MockTrustedDeviceRepository) DeleteExpired(ctx context.Context, userID string, cutoff time.Time) error {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, userID, cutoff)
	}
	// Default behavior: success
	return nil
}

func (m *MockTrustedDeviceRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TrustedDevice, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	// Default behavior: empty list
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.TrustedDeviceRepository = (*MockTrustedDeviceRepository)(nil)
