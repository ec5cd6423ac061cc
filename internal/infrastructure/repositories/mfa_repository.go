package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptshare/authsvc/domain"
)

// MFACodeRepositoryImpl implements domain.MFACodeRepository using GORM
type MFACodeRepositoryImpl struct {
	db *gorm.DB
}

// NewMFACodeRepository creates a new MFA code repository
func NewMFACodeRepository(db *gorm.DB) domain.MFACodeRepository {
	return &MFACodeRepositoryImpl{db: db}
}

// Create implements domain.MFACodeRepository
func (r *MFACodeRepositoryImpl) Create(ctx context.Context, code *domain.MFACode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	dbCode := &DBMFACode{
		ID:        code.ID,
		UserID:    code.UserID,
		Code:      code.Code,
		Used:      code.Used,
		ExpiresAt: code.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(dbCode).Error; err != nil {
		return err
	}
	code.CreatedAt = dbCode.CreatedAt
	return nil
}

// InvalidateUnused implements domain.MFACodeRepository
func (r *MFACodeRepositoryImpl) InvalidateUnused(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBMFACode{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true)
	return res.RowsAffected, res.Error
}

// Consume implements domain.MFACodeRepository. Single-use is enforced by
// the conditional mark-used, not by deletion.
func (r *MFACodeRepositoryImpl) Consume(ctx context.Context, userID, code string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&DBMFACode{}).
		Where("user_id = ? AND code = ? AND used = ? AND expires_at > ?", userID, code, false, now).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TrustedDeviceRepositoryImpl implements domain.TrustedDeviceRepository using GORM
type TrustedDeviceRepositoryImpl struct {
	db *gorm.DB
}

// NewTrustedDeviceRepository creates a new trusted device repository
func NewTrustedDeviceRepository(db *gorm.DB) domain.TrustedDeviceRepository {
	return &TrustedDeviceRepositoryImpl{db: db}
}

// Upsert implements domain.TrustedDeviceRepository. Any existing record
// with the same fingerprint is removed first so a fingerprint can only
// belong to one user.
func (r *TrustedDeviceRepositoryImpl) Upsert(ctx context.Context, device *domain.TrustedDevice) error {
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("fingerprint = ?", device.Fingerprint).Delete(&DBTrustedDevice{}).Error; err != nil {
			return err
		}
		dbDevice := &DBTrustedDevice{
			ID:          device.ID,
			UserID:      device.UserID,
			Fingerprint: device.Fingerprint,
			DeviceName:  device.DeviceName,
			IPAddress:   device.IPAddress,
			UserAgent:   device.UserAgent,
			LastUsed:    device.LastUsed,
		}
		if err := tx.Create(dbDevice).Error; err != nil {
			return err
		}
		device.CreatedAt = dbDevice.CreatedAt
		return nil
	})
}

// FindByFingerprint implements domain.TrustedDeviceRepository
func (r *TrustedDeviceRepositoryImpl) FindByFingerprint(ctx context.Context, userID, fingerprint string) (*domain.TrustedDevice, error) {
	var dbDevice DBTrustedDevice
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND fingerprint = ?", userID, fingerprint).
		First(&dbDevice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.dbToDomain(&dbDevice), nil
}

// TouchLastUsed implements domain.TrustedDeviceRepository
func (r *TrustedDeviceRepositoryImpl) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&DBTrustedDevice{}).
		Where("id = ?", id).
		Update("last_used", at).Error
}

// Delete implements domain.TrustedDeviceRepository
func (r *TrustedDeviceRepositoryImpl) Delete(ctx context.Context, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&DBTrustedDevice{})
	return res.RowsAffected > 0, res.Error
}

// DeleteByFingerprint implements domain.TrustedDeviceRepository
func (r *TrustedDeviceRepositoryImpl) DeleteByFingerprint(ctx context.Context, fingerprint string) error {
	return r.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Delete(&DBTrustedDevice{}).Error
}

// DeleteAll implements domain.TrustedDeviceRepository
func (r *TrustedDeviceRepositoryImpl) DeleteAll(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&DBTrustedDevice{}).Error
}

// DeleteExpired implements domain.TrustedDeviceRepository
func (r *TrustedDeviceRepositoryImpl) DeleteExpired(ctx context.Context, userID string, cutoff time.Time) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND last_used < ?", userID, cutoff).
		Delete(&DBTrustedDevice{}).Error
}

// ListByUser implements domain.TrustedDeviceRepository
func (r *TrustedDeviceRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*domain.TrustedDevice, error) {
	var dbDevices []DBTrustedDevice
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_used DESC").
		Find(&dbDevices).Error
	if err != nil {
		return nil, err
	}
	devices := make([]*domain.TrustedDevice, 0, len(dbDevices))
	for i := range dbDevices {
		devices = append(devices, r.dbToDomain(&dbDevices[i]))
	}
	return devices, nil
}

func (r *TrustedDeviceRepositoryImpl) dbToDomain(dbDevice *DBTrustedDevice) *domain.TrustedDevice {
	return &domain.TrustedDevice{
		ID:          dbDevice.ID,
		UserID:      dbDevice.UserID,
		Fingerprint: dbDevice.Fingerprint,
		DeviceName:  dbDevice.DeviceName,
		IPAddress:   dbDevice.IPAddress,
		UserAgent:   dbDevice.UserAgent,
		CreatedAt:   dbDevice.CreatedAt,
		LastUsed:    dbDevice.LastUsed,
	}
}
