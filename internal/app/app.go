package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptshare/authsvc/domain"
	"github.com/promptshare/authsvc/internal/config"
	httpapi "github.com/promptshare/authsvc/internal/http"
	authinfra "github.com/promptshare/authsvc/internal/infrastructure/auth"
	"github.com/promptshare/authsvc/internal/infrastructure/database"
	"github.com/promptshare/authsvc/internal/infrastructure/identity"
	"github.com/promptshare/authsvc/internal/infrastructure/notifications"
	"github.com/promptshare/authsvc/internal/infrastructure/repositories"
	"github.com/promptshare/authsvc/internal/ratelimit"
	"github.com/promptshare/authsvc/internal/services"
)

// App holds the assembled service graph.
type App struct {
	cfg    *config.Config
	router *gin.Engine

	auditDispatcher *services.AuditDispatcher
	mailDispatcher  *notifications.Dispatcher
	limiter         *ratelimit.SlidingWindowLimiter
	sweepStop       chan struct{}
	sessionSvc      domain.SessionService
	closeOnce       sync.Once
}

// New builds the application from configuration: database, repositories,
// services, dispatchers and the HTTP router.
func New(cfg *config.Config) (*App, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	tokenRepo := repositories.NewAuthTokenRepository(db)
	codeRepo := repositories.NewMFACodeRepository(db)
	deviceRepo := repositories.NewTrustedDeviceRepository(db)
	auditStore := repositories.NewAuditStore(db)

	auditDispatcher := services.NewAuditDispatcher(auditStore, cfg.AuditBufferSize)

	smtp := notifications.NewSMTPService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPEnabled)
	mailDispatcher := notifications.NewDispatcher(smtp, cfg.AuditBufferSize)

	passwordSvc := authinfra.NewPasswordService(cfg.BcryptCost)
	tokenSvc := authinfra.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RememberTTL, cfg.PendingTTL)
	policy := services.NewPasswordPolicy()

	var providers []domain.IdentityProvider
	if cfg.LocalAuthEnabled {
		providers = append(providers, identity.NewLocalProvider(userRepo, passwordSvc))
	}
	if cfg.LDAPURL != "" {
		providers = append(providers, identity.NewDirectoryProvider(identity.DirectoryConfig{
			URL:           cfg.LDAPURL,
			BindDN:        cfg.LDAPBindDN,
			BindPassword:  cfg.LDAPBindPassword,
			BaseDN:        cfg.LDAPBaseDN,
			UserAttr:      cfg.LDAPUserAttr,
			DialTimeout:   cfg.LDAPDialTimeout,
			MaxConcurrent: cfg.LDAPMaxConcurrent,
		}))
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no identity providers configured: enable local auth or set an LDAP URL")
	}

	sessionSvc := services.NewSessionService(sessionRepo, cfg.SessionLifetime, cfg.SessionRememberLifetime)
	mfaSvc := services.NewMFAService(codeRepo, deviceRepo, userRepo, passwordSvc, mailDispatcher, auditDispatcher, services.MFAConfig{
		CodeLength:  cfg.MFACodeLength,
		CodeTTL:     cfg.MFACodeTTL,
		TrustWindow: cfg.TrustWindow,
	})
	accountSvc := services.NewAccountService(userRepo, tokenRepo, sessionRepo, passwordSvc, policy, mailDispatcher, auditDispatcher, services.AccountConfig{
		LocalAuthEnabled:     cfg.LocalAuthEnabled,
		BaseURL:              cfg.BaseURL,
		ResetTokenTTL:        cfg.ResetTokenTTL,
		VerificationTokenTTL: cfg.VerificationTokenTTL,
	})
	authSvc := services.NewAuthService(providers, userRepo, sessionSvc, tokenSvc, mfaSvc, auditDispatcher, cfg.MFAEnabled)

	var limiter *ratelimit.SlidingWindowLimiter
	var limiterIface domain.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewSlidingWindowLimiter(ratelimit.Config{
			PerMinute: cfg.RateLimitPerMinute,
			PerHour:   cfg.RateLimitPerHour,
		}, time.Minute)
		limiterIface = limiter
	}

	router := httpapi.BuildRouter(httpapi.RouterDeps{
		AuthService:    authSvc,
		AccountService: accountSvc,
		MFAService:     mfaSvc,
		SessionService: sessionSvc,
		AuditStore:     auditStore,
		AuditLogger:    auditDispatcher,
		RateLimiter:    limiterIface,
	})

	return &App{
		cfg:             cfg,
		router:          router,
		auditDispatcher: auditDispatcher,
		mailDispatcher:  mailDispatcher,
		limiter:         limiter,
		sweepStop:       make(chan struct{}),
		sessionSvc:      sessionSvc,
	}, nil
}

// Run starts the background session sweeper and serves HTTP until the
// listener fails.
func (a *App) Run() error {
	go a.sweepLoop()
	defer a.Close()

	addr := ":" + a.cfg.Port
	log.Printf("auth service listening on %s", addr)
	return a.router.Run(addr)
}

// Router exposes the HTTP engine, mainly for tests.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Close stops background workers and drains the dispatchers.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		close(a.sweepStop)
		if a.limiter != nil {
			a.limiter.Close()
		}
		a.mailDispatcher.Close()
		a.auditDispatcher.Close()
	})
}

// sweepLoop periodically deactivates expired sessions so listings and
// storage do not accumulate dead rows.
func (a *App) sweepLoop() {
	ticker := time.NewTicker(a.cfg.SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := a.sessionSvc.SweepExpired(ctx); err != nil {
				log.Printf("session sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("session sweep deactivated %d sessions", n)
			}
			cancel()
		case <-a.sweepStop:
			return
		}
	}
}
