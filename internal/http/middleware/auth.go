package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/promptshare/authsvc/domain"
)

// Context keys set by the auth middleware.
const (
	CtxUser    = "auth_user"
	CtxSession = "auth_session"
	CtxToken   = "auth_token"
)

// AuthMiddleware authenticates a bearer token: signature and expiry via
// the token service, then the backing session. A structurally valid
// token whose session is revoked or expired is rejected.
func AuthMiddleware(authSvc domain.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		user, session, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxSession, session)
		c.Set(CtxToken, token)
		c.Next()
	}
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// CurrentUser returns the authenticated user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(CtxUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// RequestMeta extracts client address and agent from the request.
// X-Forwarded-For wins over the socket address when present.
func RequestMeta(c *gin.Context) *domain.RequestMeta {
	ip := c.GetHeader("X-Forwarded-For")
	if ip != "" {
		ip = strings.TrimSpace(strings.Split(ip, ",")[0])
	} else {
		ip = c.ClientIP()
	}
	return &domain.RequestMeta{
		IPAddress:   ip,
		UserAgent:   c.GetHeader("User-Agent"),
		Fingerprint: c.GetHeader("X-Device-Fingerprint"),
	}
}
