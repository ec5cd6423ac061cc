package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptshare/authsvc/domain"
)

// AuthTokenRepositoryImpl implements domain.AuthTokenRepository using GORM
type AuthTokenRepositoryImpl struct {
	db *gorm.DB
}

// NewAuthTokenRepository creates a new single-use token repository
func NewAuthTokenRepository(db *gorm.DB) domain.AuthTokenRepository {
	return &AuthTokenRepositoryImpl{db: db}
}

// Create implements domain.AuthTokenRepository
func (r *AuthTokenRepositoryImpl) Create(ctx context.Context, token *domain.AuthToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	dbToken := &DBAuthToken{
		ID:        token.ID,
		UserID:    token.UserID,
		Token:     token.Token,
		Purpose:   token.Purpose,
		Used:      token.Used,
		ExpiresAt: token.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(dbToken).Error; err != nil {
		return err
	}
	token.CreatedAt = dbToken.CreatedAt
	return nil
}

// InvalidateUnused implements domain.AuthTokenRepository. Marks every
// unused token of the purpose as used so only the newest issue can win.
func (r *AuthTokenRepositoryImpl) InvalidateUnused(ctx context.Context, userID, purpose string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBAuthToken{}).
		Where("user_id = ? AND purpose = ? AND used = ?", userID, purpose, false).
		Update("used", true)
	return res.RowsAffected, res.Error
}

// Redeem implements domain.AuthTokenRepository. The used flag is flipped
// by a single conditional UPDATE, so two concurrent redemptions of the
// same secret cannot both observe rows-affected == 1.
func (r *AuthTokenRepositoryImpl) Redeem(ctx context.Context, secret, purpose string, now time.Time) (*domain.AuthToken, error) {
	res := r.db.WithContext(ctx).Model(&DBAuthToken{}).
		Where("token = ? AND purpose = ? AND used = ? AND expires_at > ?", secret, purpose, false, now).
		Update("used", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrTokenInvalid
	}

	var dbToken DBAuthToken
	if err := r.db.WithContext(ctx).Where("token = ? AND purpose = ?", secret, purpose).First(&dbToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	return &domain.AuthToken{
		ID:        dbToken.ID,
		UserID:    dbToken.UserID,
		Token:     dbToken.Token,
		Purpose:   dbToken.Purpose,
		Used:      dbToken.Used,
		CreatedAt: dbToken.CreatedAt,
		ExpiresAt: dbToken.ExpiresAt,
	}, nil
}
