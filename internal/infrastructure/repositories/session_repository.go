package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptshare/authsvc/domain"
)

// SessionRepositoryImpl implements domain.SessionRepository using GORM
type SessionRepositoryImpl struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) domain.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(r.domainToDB(session)).Error
}

// FindByTokenHash implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var dbSession DBSession
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&dbSession).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbSession), nil
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var dbSession DBSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbSession).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbSession), nil
}

// ListActive implements domain.SessionRepository
func (r *SessionRepositoryImpl) ListActive(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error) {
	var dbSessions []DBSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now).
		Order("last_activity DESC").
		Find(&dbSessions).Error
	if err != nil {
		return nil, err
	}
	sessions := make([]*domain.Session, 0, len(dbSessions))
	for i := range dbSessions {
		sessions = append(sessions, r.dbToDomain(&dbSessions[i]))
	}
	return sessions, nil
}

// Touch implements domain.SessionRepository
func (r *SessionRepositoryImpl) Touch(ctx context.Context, tokenHash string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&DBSession{}).
		Where("token_hash = ? AND is_active = ?", tokenHash, true).
		Update("last_activity", at).Error
}

// Revoke implements domain.SessionRepository. Idempotent.
func (r *SessionRepositoryImpl) Revoke(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&DBSession{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// RevokeByTokenHash implements domain.SessionRepository. Idempotent.
func (r *SessionRepositoryImpl) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Model(&DBSession{}).
		Where("token_hash = ?", tokenHash).
		Update("is_active", false).Error
}

// RevokeAll implements domain.SessionRepository
func (r *SessionRepositoryImpl) RevokeAll(ctx context.Context, userID string, exceptTokenHash string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&DBSession{}).
		Where("user_id = ? AND is_active = ?", userID, true)
	if exceptTokenHash != "" {
		q = q.Where("token_hash <> ?", exceptTokenHash)
	}
	res := q.Update("is_active", false)
	return res.RowsAffected, res.Error
}

// SweepExpired implements domain.SessionRepository
func (r *SessionRepositoryImpl) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBSession{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *SessionRepositoryImpl) domainToDB(session *domain.Session) *DBSession {
	return &DBSession{
		ID:           session.ID,
		UserID:       session.UserID,
		TokenHash:    session.TokenHash,
		DeviceInfo:   session.DeviceInfo,
		IPAddress:    session.IPAddress,
		IsActive:     session.IsActive,
		CreatedAt:    session.CreatedAt,
		LastActivity: session.LastActivity,
		ExpiresAt:    session.ExpiresAt,
	}
}

func (r *SessionRepositoryImpl) dbToDomain(dbSession *DBSession) *domain.Session {
	return &domain.Session{
		ID:           dbSession.ID,
		UserID:       dbSession.UserID,
		TokenHash:    dbSession.TokenHash,
		DeviceInfo:   dbSession.DeviceInfo,
		IPAddress:    dbSession.IPAddress,
		IsActive:     dbSession.IsActive,
		CreatedAt:    dbSession.CreatedAt,
		LastActivity: dbSession.LastActivity,
		ExpiresAt:    dbSession.ExpiresAt,
	}
}
