package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptshare/authsvc/domain"
	"github.com/promptshare/authsvc/internal/http/handlers"
	"github.com/promptshare/authsvc/internal/http/middleware"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	AuthService    domain.AuthService
	AccountService domain.AccountService
	MFAService     domain.MFAService
	SessionService domain.SessionService
	AuditStore     domain.AuditStore
	AuditLogger    domain.AuditLogger
	RateLimiter    domain.RateLimiter
}

// BuildRouter wires the complete HTTP surface. Rate limiting guards the
// whole /auth prefix; the auth middleware guards only the routes that
// operate on an established identity.
func BuildRouter(deps RouterDeps) *gin.Engine {
	router := gin.Default()

	authHandlers := handlers.NewAuthHandlers(deps.AuthService, deps.AccountService, deps.MFAService)
	securityHandlers := handlers.NewSecurityHandlers(deps.SessionService, deps.MFAService, deps.AuditStore, deps.AuditLogger)
	requireAuth := middleware.AuthMiddleware(deps.AuthService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	auth := router.Group("/auth")
	if deps.RateLimiter != nil {
		auth.Use(middleware.RateLimitMiddleware(deps.RateLimiter, "/auth"))
	}
	{
		// Anonymous surface
		auth.POST("/login", authHandlers.Login)
		auth.POST("/mfa/verify", authHandlers.VerifyMFA)
		auth.POST("/register", authHandlers.Register)
		auth.GET("/verify-email", authHandlers.VerifyEmailGet)
		auth.POST("/verify-email", authHandlers.VerifyEmailPost)
		auth.POST("/password-reset-request", authHandlers.RequestPasswordReset)
		auth.POST("/password-reset", authHandlers.ResetPassword)
		auth.POST("/validate-password", authHandlers.ValidatePassword)

		// Authenticated surface
		protected := auth.Group("")
		protected.Use(requireAuth)
		{
			protected.POST("/logout", authHandlers.Logout)
			protected.GET("/me", authHandlers.Me)
			protected.POST("/change-password", authHandlers.ChangePassword)

			protected.POST("/mfa/enroll", authHandlers.EnrollMFA)
			protected.POST("/mfa/disable", authHandlers.DisableMFA)
			protected.GET("/mfa/status", authHandlers.MFAStatus)

			protected.GET("/security", securityHandlers.Overview)
			protected.GET("/sessions", securityHandlers.ListSessions)
			protected.DELETE("/sessions", securityHandlers.RevokeAllSessions)
			protected.DELETE("/sessions/:id", securityHandlers.RevokeSession)
			protected.GET("/devices", securityHandlers.ListDevices)
			protected.DELETE("/devices/:id", securityHandlers.RemoveDevice)
		}
	}

	return router
}
