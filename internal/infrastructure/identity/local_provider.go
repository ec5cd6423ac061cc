package identity

import (
	"context"

	"github.com/promptshare/authsvc/domain"
)

// LocalProvider verifies credentials against locally stored bcrypt hashes.
// Every failure mode (unknown login, directory-backed account, hash
// mismatch, inactive lookup error) collapses into ErrInvalidCredentials
// so a caller cannot learn which check rejected the attempt.
type LocalProvider struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
}

// NewLocalProvider creates a local identity provider
func NewLocalProvider(userRepo domain.UserRepository, passwordSvc domain.PasswordService) domain.IdentityProvider {
	return &LocalProvider{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
	}
}

// Name implements domain.IdentityProvider
func (p *LocalProvider) Name() string { return domain.AuthMethodLocal }

// Verify implements domain.IdentityProvider
func (p *LocalProvider) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := p.userRepo.FindByUsernameOrEmail(ctx, username)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsLocal() {
		return nil, domain.ErrInvalidCredentials
	}

	if !p.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}
