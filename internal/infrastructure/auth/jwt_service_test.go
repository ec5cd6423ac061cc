package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/promptshare/authsvc/domain"
)

func newTestJWTService() domain.TokenService {
	return NewJWTService("test-secret-key-at-least-32-chars!", "authsvc-test", time.Hour, 2*time.Hour, 10*time.Minute)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, ttl, err := svc.GenerateAccessToken("user-1", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if ttl != time.Hour {
		t.Errorf("ttl = %v, want %v", ttl, time.Hour)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %v, want user-1", claims.UserID)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %v, want %v", claims.TokenType, TokenTypeAccess)
	}
	if claims.RememberMe {
		t.Error("RememberMe should be false by default")
	}
}

func TestRememberMeExtendsTTL(t *testing.T) {
	svc := newTestJWTService()

	token, ttl, err := svc.GenerateAccessToken("user-1", true)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if ttl != 2*time.Hour {
		t.Errorf("ttl = %v, want %v", ttl, 2*time.Hour)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if !claims.RememberMe {
		t.Error("RememberMe claim should survive the round trip")
	}
}

func TestPendingTokenIsNotAnAccessToken(t *testing.T) {
	svc := newTestJWTService()

	pending, err := svc.GeneratePendingToken("user-1", false)
	if err != nil {
		t.Fatalf("GeneratePendingToken() error = %v", err)
	}

	// Scoped validation: the pending token authorizes only the MFA
	// verification step, never an authenticated endpoint.
	if _, err := svc.ValidateAccessToken(pending); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("ValidateAccessToken(pending) error = %v, want ErrTokenInvalid", err)
	}

	claims, err := svc.ValidatePendingToken(pending)
	if err != nil {
		t.Fatalf("ValidatePendingToken() error = %v", err)
	}
	if claims.TokenType != TokenTypePending {
		t.Errorf("TokenType = %v, want %v", claims.TokenType, TokenTypePending)
	}
}

func TestAccessTokenIsNotAPendingToken(t *testing.T) {
	svc := newTestJWTService()

	access, _, err := svc.GenerateAccessToken("user-1", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := svc.ValidatePendingToken(access); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("ValidatePendingToken(access) error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenFromDifferentSecretRejected(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService("another-secret-key-entirely-here!!", "authsvc-test", time.Hour, 2*time.Hour, 10*time.Minute)

	token, _, err := other.GenerateAccessToken("user-1", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewJWTService("test-secret-key-at-least-32-chars!", "authsvc-test", -time.Minute, -time.Minute, -time.Minute)

	token, _, err := svc.GenerateAccessToken("user-1", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	svc := newTestJWTService()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.ValidateAccessToken(token); err == nil {
			t.Errorf("ValidateAccessToken(%q) should fail", token)
		}
	}
}

func TestTokensAreUnique(t *testing.T) {
	svc := newTestJWTService()

	a, _, err := svc.GenerateAccessToken("user-1", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	b, _, err := svc.GenerateAccessToken("user-1", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if a == b {
		t.Error("two tokens for the same user should differ via jti")
	}
}
