package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Login flow events
	LoginSuccessEvent         AuditEventType = "login_success"
	LoginFailedEvent          AuditEventType = "login_failed"
	LoginBlockedInactiveEvent AuditEventType = "login_blocked_inactive"
	LogoutEvent               AuditEventType = "logout"

	// MFA events
	MFAChallengeSentEvent      AuditEventType = "mfa_challenge_sent"
	MFAVerificationOKEvent     AuditEventType = "mfa_verification_success"
	MFAVerificationFailedEvent AuditEventType = "mfa_verification_failed"
	MFAEnrolledEvent           AuditEventType = "mfa_enrolled"
	MFADisabledEvent           AuditEventType = "mfa_disabled"

	// Account lifecycle events
	UserRegisteredEvent         AuditEventType = "user_registered"
	EmailVerifiedEvent          AuditEventType = "email_verified"
	PasswordResetRequestedEvent AuditEventType = "password_reset_requested"
	PasswordResetCompletedEvent AuditEventType = "password_reset_completed"
	PasswordChangedEvent        AuditEventType = "password_changed"

	// Session events
	SessionRevokedEvent AuditEventType = "session_revoked"
	DeviceRemovedEvent  AuditEventType = "device_removed"
	DeviceTrustedEvent  AuditEventType = "device_trusted"
)

// AuditEvent is one append-only security event. UserID may be empty:
// failed logins can precede identity resolution.
type AuditEvent struct {
	ID        string         `json:"id,omitempty"`
	EventType AuditEventType `json:"event_type"`
	UserID    string         `json:"user_id,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Details   string         `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditLogger records security events. Recording is best-effort and
// fire-and-forget: a sink failure must never abort the triggering
// auth operation.
type AuditLogger interface {
	Record(event *AuditEvent)
}

// AuditStore is the persistence sink behind the audit logger.
type AuditStore interface {
	Append(ctx context.Context, event *AuditEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*AuditEvent, error)
}

// NewAuditEvent creates an audit event with the timestamp populated.
func NewAuditEvent(eventType AuditEventType, userID string) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// WithMeta sets client context information
func (e *AuditEvent) WithMeta(meta *RequestMeta) *AuditEvent {
	if meta != nil {
		e.IPAddress = meta.IPAddress
		e.UserAgent = meta.UserAgent
	}
	return e
}

// WithDetails sets the free-form details field
func (e *AuditEvent) WithDetails(details string) *AuditEvent {
	e.Details = details
	return e
}
