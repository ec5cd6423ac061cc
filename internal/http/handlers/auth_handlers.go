package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptshare/authsvc/domain"
	"github.com/promptshare/authsvc/internal/http/middleware"
	"github.com/promptshare/authsvc/internal/services"
)

// AuthHandlers handles the authentication HTTP surface
type AuthHandlers struct {
	authSvc    domain.AuthService
	accountSvc domain.AccountService
	mfaSvc     domain.MFAService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, accountSvc domain.AccountService, mfaSvc domain.MFAService) *AuthHandlers {
	return &AuthHandlers{
		authSvc:    authSvc,
		accountSvc: accountSvc,
		mfaSvc:     mfaSvc,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password" binding:"required"`
}

// MFAVerifyRequest represents MFA verification request
type MFAVerifyRequest struct {
	PendingToken      string `json:"pending_token" binding:"required"`
	Code              string `json:"code" binding:"required"`
	RememberDevice    bool   `json:"remember_device,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	DeviceName        string `json:"device_name,omitempty"`
}

// EmailVerificationRequest represents a verification token submission
type EmailVerificationRequest struct {
	Token string `json:"token" binding:"required"`
}

// PasswordResetRequestBody represents a reset request
type PasswordResetRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetBody represents a reset completion
type PasswordResetBody struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PasswordChangeBody represents an authenticated password change
type PasswordChangeBody struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// PasswordValidateBody represents a strength check request
type PasswordValidateBody struct {
	Password string `json:"password" binding:"required"`
}

// MFACredentialBody carries the password re-proof for enroll/disable
type MFACredentialBody struct {
	Password string `json:"password" binding:"required"`
	Code     string `json:"code,omitempty"`
}

// tokenResponse is the shared login/MFA response shape.
func tokenResponse(result *domain.AuthResult) gin.H {
	return gin.H{
		"access_token": result.AccessToken,
		"token_type":   result.TokenType,
		"mfa_required": result.MFARequired,
	}
}

// Login handles POST /auth/login. Credentials arrive form-encoded.
func (h *AuthHandlers) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	meta := middleware.RequestMeta(c)
	result, err := h.authSvc.Login(c.Request.Context(), &domain.AuthRequest{
		Username:   username,
		Password:   password,
		RememberMe: c.PostForm("remember_me") == "true",
	}, meta)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		case errors.Is(err, domain.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "User account is inactive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, tokenResponse(result))
}

// VerifyMFA handles POST /auth/mfa/verify
func (h *AuthHandlers) VerifyMFA(c *gin.Context) {
	var req MFAVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := middleware.RequestMeta(c)
	if req.DeviceFingerprint != "" {
		meta.Fingerprint = req.DeviceFingerprint
	}

	result, err := h.authSvc.VerifyMFA(c.Request.Context(), req.PendingToken, req.Code, req.RememberDevice, req.DeviceName, meta)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired pending MFA token"})
		case errors.Is(err, domain.ErrCodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired MFA code"})
		case errors.Is(err, domain.ErrMFANotEnabled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "MFA is not enabled for this account"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "MFA verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, tokenResponse(result))
}

// Register handles POST /auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := middleware.RequestMeta(c)
	user, err := h.accountSvc.Register(c.Request.Context(), req.Username, req.Email, req.FullName, req.Password, meta)
	if err != nil {
		var weak *services.WeakPasswordError
		switch {
		case errors.As(err, &weak):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Password does not meet requirements",
				"feedback": weak.Strength.Feedback,
			})
		case errors.Is(err, domain.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
		case errors.Is(err, domain.ErrLocalAuthDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "Local authentication is not enabled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"message":  "User registered successfully. Please verify your email address.",
		},
	})
}

// VerifyEmailGet handles GET /auth/verify-email?token= (email links)
func (h *AuthHandlers) VerifyEmailGet(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	h.verifyEmail(c, token)
}

// VerifyEmailPost handles POST /auth/verify-email
func (h *AuthHandlers) VerifyEmailPost(c *gin.Context) {
	var req EmailVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.verifyEmail(c, req.Token)
}

func (h *AuthHandlers) verifyEmail(c *gin.Context, token string) {
	meta := middleware.RequestMeta(c)
	if err := h.accountSvc.VerifyEmail(c.Request.Context(), token, meta); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Email verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Email verified successfully"}})
}

// RequestPasswordReset handles POST /auth/password-reset-request.
// The response is identical whether or not the email exists.
func (h *AuthHandlers) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := middleware.RequestMeta(c)
	_ = h.accountSvc.RequestPasswordReset(c.Request.Context(), req.Email, meta)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "If the email exists, a password reset link has been sent"},
	})
}

// ResetPassword handles POST /auth/password-reset
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req PasswordResetBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := middleware.RequestMeta(c)
	if err := h.accountSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, meta); err != nil {
		var weak *services.WeakPasswordError
		switch {
		case errors.As(err, &weak):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Password does not meet requirements",
				"feedback": weak.Strength.Feedback,
			})
		case errors.Is(err, domain.ErrTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password reset failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password reset successfully"}})
}

// ChangePassword handles POST /auth/change-password (authenticated)
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req PasswordChangeBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := middleware.RequestMeta(c)
	if err := h.accountSvc.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword, meta); err != nil {
		var weak *services.WeakPasswordError
		switch {
		case errors.As(err, &weak):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Password does not meet requirements",
				"feedback": weak.Strength.Feedback,
			})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		case errors.Is(err, domain.ErrNotLocalAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password change is only available for local authentication"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password change failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password changed successfully"}})
}

// ValidatePassword handles POST /auth/validate-password
func (h *AuthHandlers) ValidatePassword(c *gin.Context) {
	var req PasswordValidateBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	strength := h.accountSvc.CheckPasswordStrength(req.Password)
	c.JSON(http.StatusOK, gin.H{
		"valid":    strength.Valid,
		"score":    strength.Score,
		"feedback": strength.Feedback,
	})
}

// Logout handles POST /auth/logout (authenticated)
func (h *AuthHandlers) Logout(c *gin.Context) {
	token, ok := c.Get(middleware.CtxToken)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token not found"})
		return
	}

	meta := middleware.RequestMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), token.(string), meta); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Successfully logged out"}})
}

// Me handles GET /auth/me (authenticated)
func (h *AuthHandlers) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":             user.ID,
			"username":       user.Username,
			"email":          user.Email,
			"full_name":      user.FullName,
			"auth_method":    user.AuthMethod,
			"email_verified": user.EmailVerified,
			"mfa_enabled":    user.MFAEnabled,
			"is_active":      user.IsActive,
			"last_login":     user.LastLogin,
		},
	})
}

// EnrollMFA handles POST /auth/mfa/enroll (authenticated)
func (h *AuthHandlers) EnrollMFA(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req MFACredentialBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := middleware.RequestMeta(c)
	if err := h.mfaSvc.Enroll(c.Request.Context(), user, req.Password, meta); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Password is incorrect"})
		case errors.Is(err, domain.ErrNotLocalAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "MFA is only available for local authentication"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "MFA enrollment failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "MFA enabled successfully"}})
}

// DisableMFA handles POST /auth/mfa/disable (authenticated)
func (h *AuthHandlers) DisableMFA(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req MFACredentialBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := middleware.RequestMeta(c)
	if err := h.mfaSvc.Disable(c.Request.Context(), user, req.Password, req.Code, meta); err != nil {
		switch {
		case errors.Is(err, domain.ErrMFANotEnabled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "MFA is not enabled for this account"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Password is incorrect"})
		case errors.Is(err, domain.ErrCodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "MFA code is incorrect"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable MFA"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "MFA disabled successfully"}})
}

// MFAStatus handles GET /auth/mfa/status (authenticated)
func (h *AuthHandlers) MFAStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mfa_enabled":    user.MFAEnabled,
		"email_verified": user.EmailVerified,
	})
}
