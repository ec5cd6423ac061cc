package mocks

import (
	"context"

	"github.com/promptshare/authsvc/domain"
)

// MockAuditStore implements domain.AuditStore interface for testing
type MockAuditStore struct {
	AppendFunc     func(ctx context.Context, event *domain.AuditEvent) error
	ListByUserFunc func(ctx context.Context, userID string, limit int) ([]*domain.AuditEvent, error)

	// Events records appends when AppendFunc is nil.
	Events []*domain.AuditEvent
}

// NewMockAuditStore creates a new MockAuditStore with default behaviors
func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{}
}

func (m *MockAuditStore) Append(ctx context.Context, event *domain.AuditEvent) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, event)
	}
	// Default behavior: record for assertions
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockAuditStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditEvent, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit)
	}
	// Default behavior: empty history
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.AuditStore = (*MockAuditStore)(nil)
