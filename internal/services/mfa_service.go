package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/promptshare/authsvc/domain"
)

// MFAServiceImpl implements domain.MFAService
type MFAServiceImpl struct {
	codeRepo    domain.MFACodeRepository
	deviceRepo  domain.TrustedDeviceRepository
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	mailer      domain.NotificationService
	audit       domain.AuditLogger
	config      MFAConfig
}

// MFAConfig holds MFA tunables.
type MFAConfig struct {
	CodeLength  int
	CodeTTL     time.Duration
	TrustWindow time.Duration
}

// NewMFAService creates a new MFA service
func NewMFAService(
	codeRepo domain.MFACodeRepository,
	deviceRepo domain.TrustedDeviceRepository,
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	mailer domain.NotificationService,
	audit domain.AuditLogger,
	config MFAConfig,
) domain.MFAService {
	if config.CodeLength <= 0 {
		config.CodeLength = 6
	}
	return &MFAServiceImpl{
		codeRepo:    codeRepo,
		deviceRepo:  deviceRepo,
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		mailer:      mailer,
		audit:       audit,
		config:      config,
	}
}

// IssueCode implements domain.MFAService: invalidates prior unused codes,
// persists a fresh one and hands it to the mailer. The plaintext code is
// never logged.
func (s *MFAServiceImpl) IssueCode(ctx context.Context, user *domain.User) error {
	if _, err := s.codeRepo.InvalidateUnused(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	mfaCode := &domain.MFACode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.config.CodeTTL),
	}
	if err := s.codeRepo.Create(ctx, mfaCode); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	subject := "Your PromptShare MFA Code"
	body := fmt.Sprintf(
		"Your MFA verification code is: %s\n\nThis code will expire in %d minutes.\n\nIf you didn't request this code, please ignore this email.\n",
		code, int(s.config.CodeTTL.Minutes()),
	)
	// Dispatch is fire-and-forget behind the mailer; an enqueue error
	// would still leave the code redeemable.
	_ = s.mailer.SendEmail(user.Email, subject, body)

	return nil
}

// VerifyCode implements domain.MFAService
func (s *MFAServiceImpl) VerifyCode(ctx context.Context, userID, code string) (bool, error) {
	return s.codeRepo.Consume(ctx, userID, code, time.Now())
}

// IsTrusted implements domain.MFAService. A device past the rolling
// trust window is purged and reported untrusted; a live one has its
// LastUsed refreshed.
func (s *MFAServiceImpl) IsTrusted(ctx context.Context, userID, fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, nil
	}
	device, err := s.deviceRepo.FindByFingerprint(ctx, userID, fingerprint)
	if err != nil {
		return false, err
	}
	if device == nil {
		return false, nil
	}

	now := time.Now()
	if now.After(device.LastUsed.Add(s.config.TrustWindow)) {
		_ = s.deviceRepo.DeleteByFingerprint(ctx, fingerprint)
		return false, nil
	}

	if err := s.deviceRepo.TouchLastUsed(ctx, device.ID, now); err != nil {
		return false, err
	}
	return true, nil
}

// Trust implements domain.MFAService
func (s *MFAServiceImpl) Trust(ctx context.Context, userID, deviceName, fingerprint string, meta *domain.RequestMeta) (*domain.TrustedDevice, error) {
	device := &domain.TrustedDevice{
		UserID:      userID,
		Fingerprint: fingerprint,
		DeviceName:  deviceName,
		LastUsed:    time.Now(),
	}
	if meta != nil {
		device.IPAddress = meta.IPAddress
		device.UserAgent = meta.UserAgent
	}
	if err := s.deviceRepo.Upsert(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to trust device: %w", err)
	}

	s.audit.Record(domain.NewAuditEvent(domain.DeviceTrustedEvent, userID).WithMeta(meta))
	return device, nil
}

// RemoveDevice implements domain.MFAService
func (s *MFAServiceImpl) RemoveDevice(ctx context.Context, userID, deviceID string) (bool, error) {
	return s.deviceRepo.Delete(ctx, userID, deviceID)
}

// ListDevices implements domain.MFAService. Expired devices are purged
// before listing.
func (s *MFAServiceImpl) ListDevices(ctx context.Context, userID string) ([]*domain.TrustedDevice, error) {
	cutoff := time.Now().Add(-s.config.TrustWindow)
	if err := s.deviceRepo.DeleteExpired(ctx, userID, cutoff); err != nil {
		return nil, err
	}
	return s.deviceRepo.ListByUser(ctx, userID)
}

// Enroll implements domain.MFAService. Enrollment re-proves the password.
func (s *MFAServiceImpl) Enroll(ctx context.Context, user *domain.User, password string, meta *domain.RequestMeta) error {
	if !user.IsLocal() {
		return domain.ErrNotLocalAccount
	}
	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return domain.ErrInvalidCredentials
	}

	if err := s.userRepo.SetMFAEnabled(ctx, user.ID, true); err != nil {
		return fmt.Errorf("failed to enable mfa: %w", err)
	}
	user.MFAEnabled = true

	s.audit.Record(domain.NewAuditEvent(domain.MFAEnrolledEvent, user.ID).WithMeta(meta))
	return nil
}

// Disable implements domain.MFAService. Disabling re-proves the password
// and, when a code is supplied, the code as well; trusted devices are
// cleared so a later re-enrollment starts from scratch.
func (s *MFAServiceImpl) Disable(ctx context.Context, user *domain.User, password, code string, meta *domain.RequestMeta) error {
	if !user.MFAEnabled {
		return domain.ErrMFANotEnabled
	}
	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return domain.ErrInvalidCredentials
	}
	if code != "" {
		ok, err := s.VerifyCode(ctx, user.ID, code)
		if err != nil {
			return fmt.Errorf("failed to verify code: %w", err)
		}
		if !ok {
			return domain.ErrCodeInvalid
		}
	}

	if err := s.userRepo.SetMFAEnabled(ctx, user.ID, false); err != nil {
		return fmt.Errorf("failed to disable mfa: %w", err)
	}
	user.MFAEnabled = false
	user.MFASecret = ""

	if err := s.deviceRepo.DeleteAll(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to remove trusted devices: %w", err)
	}

	s.audit.Record(domain.NewAuditEvent(domain.MFADisabledEvent, user.ID).WithMeta(meta))
	return nil
}

// generateSecureCode generates a fixed-length numeric code from a
// cryptographically secure source.
func (s *MFAServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.CodeLength)
	for i := 0; i < s.config.CodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}
