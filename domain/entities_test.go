package domain

import (
	"testing"
	"time"
)

func TestUserIsLocal(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{
			name: "local user with hash",
			user: User{AuthMethod: AuthMethodLocal, PasswordHash: "$2a$10$abc"},
			want: true,
		},
		{
			name: "local user without hash",
			user: User{AuthMethod: AuthMethodLocal},
			want: false,
		},
		{
			name: "directory user",
			user: User{AuthMethod: AuthMethodDirectory},
			want: false,
		},
		{
			name: "directory user with stale hash",
			user: User{AuthMethod: AuthMethodDirectory, PasswordHash: "$2a$10$abc"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsLocal(); got != tt.want {
				t.Errorf("IsLocal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{
			name:    "active and unexpired",
			session: Session{IsActive: true, ExpiresAt: now.Add(time.Hour)},
			want:    true,
		},
		{
			name:    "active but expired",
			session: Session{IsActive: true, ExpiresAt: now.Add(-time.Minute)},
			want:    false,
		},
		{
			name:    "revoked but unexpired",
			session: Session{IsActive: false, ExpiresAt: now.Add(time.Hour)},
			want:    false,
		},
		{
			name:    "expires exactly now",
			session: Session{IsActive: true, ExpiresAt: now},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuditEventBuilders(t *testing.T) {
	meta := &RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"}
	event := NewAuditEvent(LoginSuccessEvent, "user-1").WithMeta(meta).WithDetails("method=local")

	if event.EventType != LoginSuccessEvent {
		t.Errorf("EventType = %v, want %v", event.EventType, LoginSuccessEvent)
	}
	if event.UserID != "user-1" {
		t.Errorf("UserID = %v, want user-1", event.UserID)
	}
	if event.IPAddress != "10.0.0.1" || event.UserAgent != "test-agent" {
		t.Errorf("meta not applied: %+v", event)
	}
	if event.Details != "method=local" {
		t.Errorf("Details = %v, want method=local", event.Details)
	}

	// nil meta must be a no-op, not a panic
	event = NewAuditEvent(LoginFailedEvent, "").WithMeta(nil)
	if event.IPAddress != "" {
		t.Errorf("expected empty IP for nil meta, got %v", event.IPAddress)
	}
}
