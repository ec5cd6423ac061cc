package mocks

import (
	"context"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc                func(ctx context.Context, user *domain.User) error
	FindByIDFunc              func(ctx context.Context, id string) (*domain.User, error)
	FindByUsernameOrEmailFunc func(ctx context.Context, login string) (*domain.User, error)
	FindByEmailFunc           func(ctx context.Context, email string) (*domain.User, error)
	UpdateFunc                func(ctx context.Context, user *domain.User) error
	UpdatePasswordHashFunc    func(ctx context.Context, userID, hash string) error
	SetEmailVerifiedFunc      func(ctx context.Context, userID string) error
	SetMFAEnabledFunc         func(ctx context.Context, userID string, enabled bool) error
	TouchLastLoginFunc        func(ctx context.Context, userID string, at time.Time) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, login string) (*domain.User, error) {
	if m.FindByUsernameOrEmailFunc != nil {
		return m.FindByUsernameOrEmailFunc(ctx, login)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, userID, hash)
	}
	// Default behavior: success
	return nil
}

func (m *MockUserRepository) SetEmailVerified(ctx context.Context, userID string) error {
	if m.SetEmailVerifiedFunc != nil {
		return m.SetEmailVerifiedFunc(ctx, userID)
	}
	// Default behavior: success
	return nil
}

func (m *MockUserRepository) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	if m.SetMFAEnabledFunc != nil {
		return m.SetMFAEnabledFunc(ctx, userID, enabled)
	}
	// Default behavior: success
	return nil
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, userID, at)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
