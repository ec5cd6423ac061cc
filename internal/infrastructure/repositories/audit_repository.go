package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptshare/authsvc/domain"
)

// AuditStoreImpl implements domain.AuditStore using GORM
type AuditStoreImpl struct {
	db *gorm.DB
}

// NewAuditStore creates a new audit store
func NewAuditStore(db *gorm.DB) domain.AuditStore {
	return &AuditStoreImpl{db: db}
}

// Append implements domain.AuditStore
func (r *AuditStoreImpl) Append(ctx context.Context, event *domain.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	dbEvent := &DBAuditLog{
		ID:        event.ID,
		UserID:    event.UserID,
		EventType: string(event.EventType),
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Details:   event.Details,
		CreatedAt: event.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(dbEvent).Error
}

// ListByUser implements domain.AuditStore
func (r *AuditStoreImpl) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	var dbEvents []DBAuditLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&dbEvents).Error
	if err != nil {
		return nil, err
	}
	events := make([]*domain.AuditEvent, 0, len(dbEvents))
	for i := range dbEvents {
		e := &dbEvents[i]
		events = append(events, &domain.AuditEvent{
			ID:        e.ID,
			EventType: domain.AuditEventType(e.EventType),
			UserID:    e.UserID,
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	return events, nil
}
