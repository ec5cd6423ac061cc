package repositories

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/promptshare/authsvc/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&DBUser{}, &DBSession{}, &DBAuthToken{}, &DBMFACode{}, &DBTrustedDevice{}, &DBAuditLog{},
	))
	// One pooled connection, or every goroutine would get its own
	// private in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestUserRepository(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice",
		AuthMethod:   domain.AuthMethodLocal,
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID, "Create should assign an id")

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byLogin, err := repo.FindByUsernameOrEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byLogin.ID)

	byLogin, err = repo.FindByUsernameOrEmail(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byLogin.ID)

	_, err = repo.FindByUsernameOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, repo.SetEmailVerified(ctx, user.ID))
	byID, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, byID.EmailVerified)

	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "$2a$10$newhash"))
	byID, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", byID.PasswordHash)

	require.NoError(t, repo.SetMFAEnabled(ctx, user.ID, true))
	byID, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, byID.MFAEnabled)

	at := time.Now()
	require.NoError(t, repo.TouchLastLogin(ctx, user.ID, at))
	byID, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.LastLogin)
	assert.WithinDuration(t, at, *byID.LastLogin, time.Second)
}

func TestSessionRepositoryLifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now()

	mk := func(userID, tokenHash string, expiresAt time.Time) *domain.Session {
		s := &domain.Session{
			UserID:       userID,
			TokenHash:    tokenHash,
			IsActive:     true,
			CreatedAt:    now,
			LastActivity: now,
			ExpiresAt:    expiresAt,
		}
		require.NoError(t, repo.Create(ctx, s))
		return s
	}

	s1 := mk("user-1", "hash-1", now.Add(time.Hour))
	s2 := mk("user-1", "hash-2", now.Add(time.Hour))
	expired := mk("user-1", "hash-3", now.Add(-time.Hour))
	other := mk("user-2", "hash-4", now.Add(time.Hour))

	found, err := repo.FindByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, s1.ID, found.ID)

	_, err = repo.FindByTokenHash(ctx, "no-such-hash")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	active, err := repo.ListActive(ctx, "user-1", now)
	require.NoError(t, err)
	assert.Len(t, active, 2, "expired sessions are not listed")

	// Revoke one by id
	require.NoError(t, repo.Revoke(ctx, s2.ID))
	active, err = repo.ListActive(ctx, "user-1", now)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// RevokeAll with an exception keeps the given token; the expired
	// session still carried is_active and is flipped here.
	count, err := repo.RevokeAll(ctx, "user-1", "hash-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err = repo.FindByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, found.IsActive, "the excepted session survives")

	count, err = repo.RevokeAll(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The other user's session is untouched
	found, err = repo.FindByTokenHash(ctx, "hash-4")
	require.NoError(t, err)
	assert.True(t, found.IsActive)
	_ = other
	_ = expired
}

func TestSessionRepositorySweepExpired(t *testing.T) {
	db := testDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now()

	live := &domain.Session{UserID: "u", TokenHash: "live", IsActive: true, ExpiresAt: now.Add(time.Hour)}
	dead := &domain.Session{UserID: "u", TokenHash: "dead", IsActive: true, ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, dead))

	count, err := repo.SweepExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByTokenHash(ctx, "dead")
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	found, err = repo.FindByTokenHash(ctx, "live")
	require.NoError(t, err)
	assert.True(t, found.IsActive)
}

func TestAuthTokenRedeemIsSingleUse(t *testing.T) {
	db := testDB(t)
	repo := NewAuthTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	token := &domain.AuthToken{
		UserID:    "user-1",
		Token:     "secret-abc",
		Purpose:   domain.TokenPurposePasswordReset,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, token))

	redeemed, err := repo.Redeem(ctx, "secret-abc", domain.TokenPurposePasswordReset, now)
	require.NoError(t, err)
	assert.Equal(t, "user-1", redeemed.UserID)
	assert.True(t, redeemed.Used)

	// Second redemption of the same secret must fail.
	_, err = repo.Redeem(ctx, "secret-abc", domain.TokenPurposePasswordReset, now)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthTokenRedeemConcurrent(t *testing.T) {
	db := testDB(t)
	repo := NewAuthTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.AuthToken{
		UserID:    "user-1",
		Token:     "secret-abc",
		Purpose:   domain.TokenPurposePasswordReset,
		ExpiresAt: now.Add(time.Hour),
	}))

	const attempts = 8
	var wg sync.WaitGroup
	var succeeded atomic.Int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Redeem(ctx, "secret-abc", domain.TokenPurposePasswordReset, now)
			if err == nil {
				succeeded.Add(1)
			} else if !errors.Is(err, domain.ErrTokenInvalid) {
				t.Errorf("unexpected redeem error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded.Load(), "exactly one concurrent redemption may win")
}

func TestAuthTokenRedeemScopedByPurpose(t *testing.T) {
	db := testDB(t)
	repo := NewAuthTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.AuthToken{
		UserID:    "user-1",
		Token:     "secret-abc",
		Purpose:   domain.TokenPurposeEmailVerification,
		ExpiresAt: now.Add(time.Hour),
	}))

	// A verification token cannot reset a password.
	_, err := repo.Redeem(ctx, "secret-abc", domain.TokenPurposePasswordReset, now)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = repo.Redeem(ctx, "secret-abc", domain.TokenPurposeEmailVerification, now)
	assert.NoError(t, err)
}

func TestAuthTokenExpiredNotRedeemable(t *testing.T) {
	db := testDB(t)
	repo := NewAuthTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.AuthToken{
		UserID:    "user-1",
		Token:     "stale",
		Purpose:   domain.TokenPurposePasswordReset,
		ExpiresAt: now.Add(-time.Minute),
	}))

	_, err := repo.Redeem(ctx, "stale", domain.TokenPurposePasswordReset, now)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestAuthTokenInvalidateUnused(t *testing.T) {
	db := testDB(t)
	repo := NewAuthTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.AuthToken{
		UserID: "user-1", Token: "old", Purpose: domain.TokenPurposePasswordReset, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &domain.AuthToken{
		UserID: "user-1", Token: "new", Purpose: domain.TokenPurposePasswordReset, ExpiresAt: now.Add(time.Hour),
	}))

	count, err := repo.InvalidateUnused(ctx, "user-1", domain.TokenPurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.Redeem(ctx, "old", domain.TokenPurposePasswordReset, now)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestMFACodeConsumeIsSingleUse(t *testing.T) {
	db := testDB(t)
	repo := NewMFACodeRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.MFACode{
		UserID: "user-1", Code: "123456", ExpiresAt: now.Add(10 * time.Minute),
	}))

	ok, err := repo.Consume(ctx, "user-1", "123456", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "user-1", "123456", now)
	require.NoError(t, err)
	assert.False(t, ok, "a code is consumed exactly once")

	// Wrong code and wrong user never consume.
	ok, err = repo.Consume(ctx, "user-1", "654321", now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Consume(ctx, "user-2", "123456", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMFACodeInvalidateUnused(t *testing.T) {
	db := testDB(t)
	repo := NewMFACodeRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.MFACode{
		UserID: "user-1", Code: "111111", ExpiresAt: now.Add(10 * time.Minute),
	}))
	require.NoError(t, repo.Create(ctx, &domain.MFACode{
		UserID: "user-1", Code: "222222", ExpiresAt: now.Add(10 * time.Minute),
	}))

	count, err := repo.InvalidateUnused(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ok, err := repo.Consume(ctx, "user-1", "111111", now)
	require.NoError(t, err)
	assert.False(t, ok, "an invalidated code cannot be consumed")
}

func TestTrustedDeviceUpsertMovesFingerprint(t *testing.T) {
	db := testDB(t)
	repo := NewTrustedDeviceRepository(db)
	ctx := context.Background()
	now := time.Now()

	first := &domain.TrustedDevice{UserID: "user-1", Fingerprint: "fp-1", DeviceName: "Laptop", LastUsed: now}
	require.NoError(t, repo.Upsert(ctx, first))

	// The same fingerprint re-trusted by a different user replaces the
	// old row entirely.
	second := &domain.TrustedDevice{UserID: "user-2", Fingerprint: "fp-1", DeviceName: "Laptop", LastUsed: now}
	require.NoError(t, repo.Upsert(ctx, second))

	gone, err := repo.FindByFingerprint(ctx, "user-1", "fp-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	found, err := repo.FindByFingerprint(ctx, "user-2", "fp-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, second.ID, found.ID)
}

func TestTrustedDeviceDeleteScopedToOwner(t *testing.T) {
	db := testDB(t)
	repo := NewTrustedDeviceRepository(db)
	ctx := context.Background()

	device := &domain.TrustedDevice{UserID: "user-1", Fingerprint: "fp-1", LastUsed: time.Now()}
	require.NoError(t, repo.Upsert(ctx, device))

	ok, err := repo.Delete(ctx, "user-2", device.ID)
	require.NoError(t, err)
	assert.False(t, ok, "a foreign device id must not be deletable")

	ok, err = repo.Delete(ctx, "user-1", device.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTrustedDeviceDeleteExpired(t *testing.T) {
	db := testDB(t)
	repo := NewTrustedDeviceRepository(db)
	ctx := context.Background()
	now := time.Now()

	fresh := &domain.TrustedDevice{UserID: "user-1", Fingerprint: "fp-fresh", LastUsed: now}
	stale := &domain.TrustedDevice{UserID: "user-1", Fingerprint: "fp-stale", LastUsed: now.Add(-40 * 24 * time.Hour)}
	require.NoError(t, repo.Upsert(ctx, fresh))
	require.NoError(t, repo.Upsert(ctx, stale))

	require.NoError(t, repo.DeleteExpired(ctx, "user-1", now.Add(-30*24*time.Hour)))

	devices, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "fp-fresh", devices[0].Fingerprint)
}

func TestAuditStoreAppendAndList(t *testing.T) {
	db := testDB(t)
	store := NewAuditStore(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, &domain.AuditEvent{
			EventType: domain.LoginSuccessEvent,
			UserID:    "user-1",
			IPAddress: "10.0.0.1",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, store.Append(ctx, &domain.AuditEvent{
		EventType: domain.LoginFailedEvent,
		UserID:    "user-2",
		CreatedAt: time.Now(),
	}))

	events, err := store.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, "user-1", e.UserID)
	}

	// Limit applies
	events, err = store.ListByUser(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{
		Username: "alice", Email: "alice@example.com", AuthMethod: domain.AuthMethodLocal, IsActive: true,
	}))

	err := repo.Create(ctx, &domain.User{
		Username: "alice", Email: "alice2@example.com", AuthMethod: domain.AuthMethodLocal, IsActive: true,
	})
	assert.Error(t, err, "the unique index rejects duplicate usernames")
	assert.False(t, errors.Is(err, domain.ErrUserNotFound))
}
