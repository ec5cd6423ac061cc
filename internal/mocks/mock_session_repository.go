package mocks

import (
	"context"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// MockSessionRepository implements domain.SessionRepository interface for testing
type MockSessionRepository struct {
	CreateFunc            func(ctx context.Context, session *domain.Session) error
	FindByTokenHashFunc   func(ctx context.Context, tokenHash string) (*domain.Session, error)
	FindByIDFunc          func(ctx context.Context, id string) (*domain.Session, error)
	ListActiveFunc        func(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error)
	TouchFunc             func(ctx context.Context, tokenHash string, at time.Time) error
	RevokeFunc            func(ctx context.Context, id string) error
	RevokeByTokenHashFunc func(ctx context.Context, tokenHash string) error
	RevokeAllFunc         func(ctx context.Context, userID string, exceptTokenHash string) (int64, error)
	SweepExpiredFunc      func(ctx context.Context, now time.Time) (int64, error)
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	// Default behavior: success
	return nil
}

func (m *MockSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	if m.FindByTokenHashFunc != nil {
		return m.FindByTokenHashFunc(ctx, tokenHash)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) ListActive(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, userID, now)
	}
	// Default behavior: empty list
	return nil, nil
}

func (m *MockSessionRepository) Touch(ctx context.Context, tokenHash string, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, tokenHash, at)
	}
	// Default behavior: success
	return nil
}

func (m *MockSessionRepository) Revoke(ctx context.Context, id string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

func (m *MockSessionRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	if m.RevokeByTokenHashFunc != nil {
		return m.RevokeByTokenHashFunc(ctx, tokenHash)
	}
	// Default behavior: success
	return nil
}

func (m *MockSessionRepository) RevokeAll(ctx context.Context, userID string, exceptTokenHash string) (int64, error) {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID, exceptTokenHash)
	}
	// Default behavior: nothing revoked
	return 0, nil
}

func (m *MockSessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.SweepExpiredFunc != nil {
		return m.SweepExpiredFunc(ctx, now)
	}
	// Default behavior: nothing swept
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
