package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/promptshare/authsvc/domain"
)

// Token type markers. The typ claim sits under the HMAC signature, so a
// stolen pending token cannot be replayed as an access token.
const (
	TokenTypeAccess  = "access"
	TokenTypePending = "pending_mfa"
)

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	secretKey   []byte
	issuer      string
	accessTTL   time.Duration
	rememberTTL time.Duration
	pendingTTL  time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey, issuer string, accessTTL, rememberTTL, pendingTTL time.Duration) domain.TokenService {
	return &JWTServiceImpl{
		secretKey:   []byte(secretKey),
		issuer:      issuer,
		accessTTL:   accessTTL,
		rememberTTL: rememberTTL,
		pendingTTL:  pendingTTL,
	}
}

// generateJTI creates a unique JWT ID
func (j *JWTServiceImpl) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (j *JWTServiceImpl) sign(userID, typ string, ttl time.Duration, rememberMe bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": typ,
		"iss": j.issuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": j.generateJTI(),
	}
	if rememberMe {
		claims["rem"] = true
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// GenerateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) GenerateAccessToken(userID string, rememberMe bool) (string, time.Duration, error) {
	ttl := j.accessTTL
	if rememberMe {
		ttl = j.rememberTTL
	}
	token, err := j.sign(userID, TokenTypeAccess, ttl, rememberMe)
	return token, ttl, err
}

// GeneratePendingToken implements domain.TokenService. The remember-me
// choice made at login rides inside the signed claims so that MFA
// completion honors it without trusting client input a second time.
func (j *JWTServiceImpl) GeneratePendingToken(userID string, rememberMe bool) (string, error) {
	return j.sign(userID, TokenTypePending, j.pendingTTL, rememberMe)
}

// ValidateAccessToken implements domain.TokenService
func (j *JWTServiceImpl) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	return j.validateToken(tokenString, TokenTypeAccess)
}

// ValidatePendingToken implements domain.TokenService
func (j *JWTServiceImpl) ValidatePendingToken(tokenString string) (*domain.TokenClaims, error) {
	return j.validateToken(tokenString, TokenTypePending)
}

// validateToken validates a JWT and enforces the expected token type.
func (j *JWTServiceImpl) validateToken(tokenString, wantType string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return j.secretKey, nil
	})

	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, domain.ErrTokenMalformed
	}

	typ, ok := claims["typ"].(string)
	if !ok || typ != wantType {
		// A pending token presented as an access token (or the reverse)
		// is reported exactly like any other invalid token.
		return nil, domain.ErrTokenInvalid
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrTokenInvalid
	}

	rem, _ := claims["rem"].(bool)

	return &domain.TokenClaims{
		UserID:     sub,
		TokenType:  typ,
		IssuedAt:   int64(iat),
		ExpiresAt:  int64(exp),
		RememberMe: rem,
	}, nil
}
