package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	Issuer      string `yaml:"issuer"`
	AccessTTL   string `yaml:"access_ttl"`
	RememberTTL string `yaml:"remember_ttl"`
	PendingTTL  string `yaml:"pending_ttl"`
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type AuthConfig struct {
	LocalEnabled bool `yaml:"local_enabled"`
	MFAEnabled   bool `yaml:"mfa_enabled"`
}

type LDAPConfig struct {
	URL             string `yaml:"url"`
	BindDN          string `yaml:"bind_dn"`
	BindPassword    string `yaml:"bind_password"`
	BaseDN          string `yaml:"base_dn"`
	UserAttr        string `yaml:"user_attr"`
	DialTimeout     string `yaml:"dial_timeout"`
	MaxConcurrent   int    `yaml:"max_concurrent"`
}

type TokenConfig struct {
	ResetTTL        string `yaml:"reset_ttl"`
	VerificationTTL string `yaml:"verification_ttl"`
	MFACodeTTL      string `yaml:"mfa_code_ttl"`
	MFACodeLength   int    `yaml:"mfa_code_length"`
	TrustWindow     string `yaml:"trust_window"`
}

type SessionConfig struct {
	Lifetime         string `yaml:"lifetime"`
	RememberLifetime string `yaml:"remember_lifetime"`
	SweepInterval    string `yaml:"sweep_interval"`
}

type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type RateLimitConfig struct {
	Enabled   bool `yaml:"enabled"`
	PerMinute int  `yaml:"per_minute"`
	PerHour   int  `yaml:"per_hour"`
}

type AuditConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Password  PasswordConfig  `yaml:"password"`
	Auth      AuthConfig      `yaml:"auth"`
	LDAP      LDAPConfig      `yaml:"ldap"`
	Tokens    TokenConfig     `yaml:"tokens"`
	Session   SessionConfig   `yaml:"session"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Audit     AuditConfig     `yaml:"audit"`
}

type Config struct {
	Port    string
	GinMode string
	BaseURL string

	DSN string

	JWTSecret   string
	JWTIssuer   string
	AccessTTL   time.Duration
	RememberTTL time.Duration
	PendingTTL  time.Duration

	BcryptCost int

	LocalAuthEnabled bool
	MFAEnabled       bool

	LDAPURL           string
	LDAPBindDN        string
	LDAPBindPassword  string
	LDAPBaseDN        string
	LDAPUserAttr      string
	LDAPDialTimeout   time.Duration
	LDAPMaxConcurrent int

	ResetTokenTTL        time.Duration
	VerificationTokenTTL time.Duration
	MFACodeTTL           time.Duration
	MFACodeLength        int
	TrustWindow          time.Duration

	SessionLifetime         time.Duration
	SessionRememberLifetime time.Duration
	SessionSweepInterval    time.Duration

	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	RateLimitEnabled   bool
	RateLimitPerMinute int
	RateLimitPerHour   int

	AuditBufferSize int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Safe defaults for every duration the file may omit.
const (
	defAccessTTL       = 30 * 24 * time.Hour
	defRememberTTL     = 90 * 24 * time.Hour
	defPendingTTL      = 10 * time.Minute
	defResetTTL        = 24 * time.Hour
	defVerificationTTL = 48 * time.Hour
	defMFACodeTTL      = 10 * time.Minute
	defTrustWindow     = 30 * 24 * time.Hour
	defSweepInterval   = time.Hour
	defLDAPDialTimeout = 10 * time.Second
)

func Load() (*Config, error) {
	configFile, err := loadConfigFile(env("AUTHSVC_CONFIG", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accessTTL, err := duration(configFile.JWT.AccessTTL, defAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	rememberTTL, err := duration(configFile.JWT.RememberTTL, defRememberTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT remember TTL: %w", err)
	}
	pendingTTL, err := duration(configFile.JWT.PendingTTL, defPendingTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT pending TTL: %w", err)
	}
	resetTTL, err := duration(configFile.Tokens.ResetTTL, defResetTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid reset token TTL: %w", err)
	}
	verificationTTL, err := duration(configFile.Tokens.VerificationTTL, defVerificationTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid verification token TTL: %w", err)
	}
	mfaCodeTTL, err := duration(configFile.Tokens.MFACodeTTL, defMFACodeTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid MFA code TTL: %w", err)
	}
	trustWindow, err := duration(configFile.Tokens.TrustWindow, defTrustWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid trust window: %w", err)
	}
	sessionLifetime, err := duration(configFile.Session.Lifetime, defAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session lifetime: %w", err)
	}
	rememberLifetime, err := duration(configFile.Session.RememberLifetime, defRememberTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session remember lifetime: %w", err)
	}
	sweepInterval, err := duration(configFile.Session.SweepInterval, defSweepInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid session sweep interval: %w", err)
	}
	ldapDialTimeout, err := duration(configFile.LDAP.DialTimeout, defLDAPDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid LDAP dial timeout: %w", err)
	}

	cfg := &Config{
		Port:    fmt.Sprintf("%d", configFile.App.Port),
		GinMode: configFile.App.GinMode,
		BaseURL: env("AUTHSVC_BASE_URL", configFile.App.BaseURL),

		DSN: env("AUTHSVC_DSN", configFile.Database.DSN),

		JWTSecret:   env("AUTHSVC_JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:   configFile.JWT.Issuer,
		AccessTTL:   accessTTL,
		RememberTTL: rememberTTL,
		PendingTTL:  pendingTTL,

		BcryptCost: configFile.Password.BcryptCost,

		LocalAuthEnabled: configFile.Auth.LocalEnabled,
		MFAEnabled:       configFile.Auth.MFAEnabled,

		LDAPURL:           env("AUTHSVC_LDAP_URL", configFile.LDAP.URL),
		LDAPBindDN:        configFile.LDAP.BindDN,
		LDAPBindPassword:  env("AUTHSVC_LDAP_BIND_PASSWORD", configFile.LDAP.BindPassword),
		LDAPBaseDN:        configFile.LDAP.BaseDN,
		LDAPUserAttr:      configFile.LDAP.UserAttr,
		LDAPDialTimeout:   ldapDialTimeout,
		LDAPMaxConcurrent: configFile.LDAP.MaxConcurrent,

		ResetTokenTTL:        resetTTL,
		VerificationTokenTTL: verificationTTL,
		MFACodeTTL:           mfaCodeTTL,
		MFACodeLength:        configFile.Tokens.MFACodeLength,
		TrustWindow:          trustWindow,

		SessionLifetime:         sessionLifetime,
		SessionRememberLifetime: rememberLifetime,
		SessionSweepInterval:    sweepInterval,

		SMTPEnabled:  configFile.SMTP.Enabled,
		SMTPHost:     env("AUTHSVC_SMTP_HOST", configFile.SMTP.Host),
		SMTPPort:     configFile.SMTP.Port,
		SMTPUsername: configFile.SMTP.Username,
		SMTPPassword: env("AUTHSVC_SMTP_PASSWORD", configFile.SMTP.Password),
		SMTPFrom:     configFile.SMTP.From,

		RateLimitEnabled:   configFile.RateLimit.Enabled,
		RateLimitPerMinute: configFile.RateLimit.PerMinute,
		RateLimitPerHour:   configFile.RateLimit.PerHour,

		AuditBufferSize: configFile.Audit.BufferSize,
	}

	if cfg.LDAPUserAttr == "" {
		cfg.LDAPUserAttr = "sAMAccountName"
	}
	if cfg.LDAPMaxConcurrent <= 0 {
		cfg.LDAPMaxConcurrent = 8
	}
	if cfg.MFACodeLength <= 0 {
		cfg.MFACodeLength = 6
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 10
	}
	if cfg.RateLimitPerHour <= 0 {
		cfg.RateLimitPerHour = 100
	}
	if cfg.AuditBufferSize <= 0 {
		cfg.AuditBufferSize = 256
	}

	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
