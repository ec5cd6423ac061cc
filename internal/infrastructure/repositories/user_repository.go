package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptshare/authsvc/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return err
	}
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// FindByUsernameOrEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByUsernameOrEmail(ctx context.Context, login string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	return r.db.WithContext(ctx).Save(dbUser).Error
}

// UpdatePasswordHash implements domain.UserRepository
func (r *UserRepositoryImpl) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update("password", hash).Error
}

// SetEmailVerified implements domain.UserRepository
func (r *UserRepositoryImpl) SetEmailVerified(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update("email_verified", true).Error
}

// SetMFAEnabled implements domain.UserRepository
func (r *UserRepositoryImpl) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	updates := map[string]interface{}{"mfa_enabled": enabled}
	if !enabled {
		updates["mfa_secret"] = ""
	}
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Updates(updates).Error
}

// TouchLastLogin implements domain.UserRepository
func (r *UserRepositoryImpl) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Update("last_login", at).Error
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		AuthMethod:    user.AuthMethod,
		PasswordHash:  user.PasswordHash,
		EmailVerified: user.EmailVerified,
		MFAEnabled:    user.MFAEnabled,
		MFASecret:     user.MFASecret,
		IsActive:      user.IsActive,
		LastLogin:     user.LastLogin,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:            dbUser.ID,
		Username:      dbUser.Username,
		Email:         dbUser.Email,
		FullName:      dbUser.FullName,
		AuthMethod:    dbUser.AuthMethod,
		PasswordHash:  dbUser.PasswordHash,
		EmailVerified: dbUser.EmailVerified,
		MFAEnabled:    dbUser.MFAEnabled,
		MFASecret:     dbUser.MFASecret,
		IsActive:      dbUser.IsActive,
		LastLogin:     dbUser.LastLogin,
		CreatedAt:     dbUser.CreatedAt,
		UpdatedAt:     dbUser.UpdatedAt,
	}
}
