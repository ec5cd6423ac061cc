package repositories

import "time"

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID            string `gorm:"primaryKey;size:36"`
	Username      string `gorm:"uniqueIndex;size:255"`
	Email         string `gorm:"uniqueIndex;size:255"`
	FullName      string `gorm:"size:255"`
	AuthMethod    string `gorm:"index;size:16"`
	PasswordHash  string `gorm:"column:password"`
	EmailVerified bool
	MFAEnabled    bool   `gorm:"column:mfa_enabled"`
	MFASecret     string `gorm:"column:mfa_secret"`
	IsActive      bool   `gorm:"index"`
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string { return "users" }

// DBSession represents the database model for Session
type DBSession struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"index;size:36"`
	TokenHash    string    `gorm:"uniqueIndex;size:64"`
	DeviceInfo   string    `gorm:"size:512"`
	IPAddress    string    `gorm:"size:64"`
	IsActive     bool      `gorm:"index"`
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBSession) TableName() string { return "user_sessions" }

// DBAuthToken represents the database model for single-use tokens
type DBAuthToken struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36"`
	Token     string `gorm:"uniqueIndex;size:64"`
	Purpose   string `gorm:"index;size:32"`
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TableName returns the table name for GORM
func (DBAuthToken) TableName() string { return "auth_tokens" }

// DBMFACode represents the database model for MFA challenge codes
type DBMFACode struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36"`
	Code      string `gorm:"size:16"`
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TableName returns the table name for GORM
func (DBMFACode) TableName() string { return "mfa_codes" }

// DBTrustedDevice represents the database model for trusted devices
type DBTrustedDevice struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"index;size:36"`
	Fingerprint string `gorm:"uniqueIndex;size:128"`
	DeviceName  string `gorm:"size:255"`
	IPAddress   string `gorm:"size:64"`
	UserAgent   string `gorm:"size:512"`
	CreatedAt   time.Time
	LastUsed    time.Time
}

// TableName returns the table name for GORM
func (DBTrustedDevice) TableName() string { return "trusted_devices" }

// DBAuditLog represents the append-only audit trail. Rows are never
// updated or deleted by this service.
type DBAuditLog struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;size:36"`
	EventType string    `gorm:"index;size:64"`
	IPAddress string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:512"`
	Details   string    `gorm:"size:1024"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBAuditLog) TableName() string { return "auth_audit_logs" }
