package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// HashToken derives the stored session reference from an access token.
// Sessions never hold the raw JWT.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SessionServiceImpl implements domain.SessionService
type SessionServiceImpl struct {
	sessionRepo      domain.SessionRepository
	lifetime         time.Duration
	rememberLifetime time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo domain.SessionRepository, lifetime, rememberLifetime time.Duration) domain.SessionService {
	return &SessionServiceImpl{
		sessionRepo:      sessionRepo,
		lifetime:         lifetime,
		rememberLifetime: rememberLifetime,
	}
}

// Create implements domain.SessionService
func (s *SessionServiceImpl) Create(ctx context.Context, userID, accessToken string, rememberMe bool, meta *domain.RequestMeta) (*domain.Session, error) {
	lifetime := s.lifetime
	if rememberMe {
		lifetime = s.rememberLifetime
	}
	now := time.Now()

	session := &domain.Session{
		UserID:       userID,
		TokenHash:    HashToken(accessToken),
		IsActive:     true,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(lifetime),
	}
	if meta != nil {
		session.IPAddress = meta.IPAddress
		session.DeviceInfo = meta.UserAgent
	}
	if session.DeviceInfo == "" {
		session.DeviceInfo = "Unknown device"
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Validate implements domain.SessionService. A present but expired or
// revoked session is a revocation signal, never a silent success.
func (s *SessionServiceImpl) Validate(ctx context.Context, accessToken string) (*domain.Session, error) {
	session, err := s.sessionRepo.FindByTokenHash(ctx, HashToken(accessToken))
	if err != nil {
		return nil, domain.ErrSessionInvalid
	}
	if !session.Valid(time.Now()) {
		return nil, domain.ErrSessionInvalid
	}
	return session, nil
}

// Touch implements domain.SessionService. Best-effort: a failed touch
// must not fail the authenticated request.
func (s *SessionServiceImpl) Touch(ctx context.Context, accessToken string) {
	if err := s.sessionRepo.Touch(ctx, HashToken(accessToken), time.Now()); err != nil {
		log.Printf("session touch failed: %v", err)
	}
}

// Revoke implements domain.SessionService. The session must belong to
// the given user.
func (s *SessionServiceImpl) Revoke(ctx context.Context, userID, sessionID string) (bool, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return false, nil
	}
	if session.UserID != userID {
		return false, nil
	}
	if err := s.sessionRepo.Revoke(ctx, sessionID); err != nil {
		return false, err
	}
	return true, nil
}

// RevokeByToken implements domain.SessionService
func (s *SessionServiceImpl) RevokeByToken(ctx context.Context, accessToken string) error {
	return s.sessionRepo.RevokeByTokenHash(ctx, HashToken(accessToken))
}

// RevokeAll implements domain.SessionService
func (s *SessionServiceImpl) RevokeAll(ctx context.Context, userID, exceptToken string) (int64, error) {
	exceptHash := ""
	if exceptToken != "" {
		exceptHash = HashToken(exceptToken)
	}
	return s.sessionRepo.RevokeAll(ctx, userID, exceptHash)
}

// List implements domain.SessionService
func (s *SessionServiceImpl) List(ctx context.Context, userID string) ([]*domain.Session, error) {
	return s.sessionRepo.ListActive(ctx, userID, time.Now())
}

// SweepExpired implements domain.SessionService
func (s *SessionServiceImpl) SweepExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.SweepExpired(ctx, time.Now())
}
