package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptshare/authsvc/domain"
	"github.com/promptshare/authsvc/internal/http/middleware"
)

// SecurityHandlers exposes per-user session, device and audit management
type SecurityHandlers struct {
	sessionSvc domain.SessionService
	mfaSvc     domain.MFAService
	auditStore domain.AuditStore
	audit      domain.AuditLogger
}

// NewSecurityHandlers creates new security handlers
func NewSecurityHandlers(sessionSvc domain.SessionService, mfaSvc domain.MFAService, auditStore domain.AuditStore, audit domain.AuditLogger) *SecurityHandlers {
	return &SecurityHandlers{
		sessionSvc: sessionSvc,
		mfaSvc:     mfaSvc,
		auditStore: auditStore,
		audit:      audit,
	}
}

func sessionView(s *domain.Session, current bool) gin.H {
	return gin.H{
		"id":            s.ID,
		"device_info":   s.DeviceInfo,
		"ip_address":    s.IPAddress,
		"created_at":    s.CreatedAt,
		"last_activity": s.LastActivity,
		"expires_at":    s.ExpiresAt,
		"current":       current,
	}
}

func deviceView(d *domain.TrustedDevice) gin.H {
	return gin.H{
		"id":          d.ID,
		"device_name": d.DeviceName,
		"ip_address":  d.IPAddress,
		"created_at":  d.CreatedAt,
		"last_used":   d.LastUsed,
	}
}

// Overview handles GET /auth/security (authenticated). A single call
// returns everything the account security page needs.
func (h *SecurityHandlers) Overview(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	currentHash := currentTokenHash(c)

	sessions, err := h.sessionSvc.List(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sessions"})
		return
	}

	devices, err := h.mfaSvc.ListDevices(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trusted devices"})
		return
	}

	events, err := h.auditStore.ListByUser(c.Request.Context(), user.ID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load activity"})
		return
	}

	sessionViews := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		sessionViews = append(sessionViews, sessionView(s, s.TokenHash == currentHash))
	}
	deviceViews := make([]gin.H, 0, len(devices))
	for _, d := range devices {
		deviceViews = append(deviceViews, deviceView(d))
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"mfa_enabled":     user.MFAEnabled,
			"sessions":        sessionViews,
			"trusted_devices": deviceViews,
			"recent_activity": events,
		},
	})
}

// ListSessions handles GET /auth/sessions (authenticated)
func (h *SecurityHandlers) ListSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	currentHash := currentTokenHash(c)

	sessions, err := h.sessionSvc.List(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sessions"})
		return
	}

	views := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView(s, s.TokenHash == currentHash))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// RevokeSession handles DELETE /auth/sessions/:id (authenticated).
// Ownership is enforced: a user can only revoke their own sessions.
func (h *SecurityHandlers) RevokeSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	sessionID := c.Param("id")
	revoked, err := h.sessionSvc.Revoke(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke session"})
		return
	}
	if !revoked {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	h.audit.Record(domain.NewAuditEvent(domain.SessionRevokedEvent, user.ID).
		WithMeta(middleware.RequestMeta(c)).
		WithDetails("session_id=" + sessionID))

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Session revoked"}})
}

// RevokeAllSessions handles DELETE /auth/sessions (authenticated).
// Every session except the calling one is revoked.
func (h *SecurityHandlers) RevokeAllSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	token, _ := middleware.BearerToken(c)
	count, err := h.sessionSvc.RevokeAll(c.Request.Context(), user.ID, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"revoked": count}})
}

// ListDevices handles GET /auth/devices (authenticated)
func (h *SecurityHandlers) ListDevices(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	devices, err := h.mfaSvc.ListDevices(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trusted devices"})
		return
	}

	views := make([]gin.H, 0, len(devices))
	for _, d := range devices {
		views = append(views, deviceView(d))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

// RemoveDevice handles DELETE /auth/devices/:id (authenticated)
func (h *SecurityHandlers) RemoveDevice(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	deviceID := c.Param("id")
	removed, err := h.mfaSvc.RemoveDevice(c.Request.Context(), user.ID, deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove device"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}

	h.audit.Record(domain.NewAuditEvent(domain.DeviceRemovedEvent, user.ID).
		WithMeta(middleware.RequestMeta(c)).
		WithDetails("device_id=" + deviceID))

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Device removed"}})
}

// currentTokenHash returns the hash of the caller's own token so list
// views can flag the current session.
func currentTokenHash(c *gin.Context) string {
	if sess, ok := c.Get(middleware.CtxSession); ok {
		if s, ok := sess.(*domain.Session); ok {
			return s.TokenHash
		}
	}
	return ""
}
