package identity

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/promptshare/authsvc/domain"
)

// DirectoryConfig holds LDAP/Active Directory connection settings.
type DirectoryConfig struct {
	URL           string
	BindDN        string
	BindPassword  string
	BaseDN        string
	UserAttr      string
	DialTimeout   time.Duration
	MaxConcurrent int
}

// DirectoryProvider verifies credentials with a two-stage LDAP bind:
// a privileged service bind resolves the principal DN, then the user's
// own password is bound against that DN. Any failure at any stage is
// reported as ErrInvalidCredentials; transport errors are logged but
// never surfaced, so a directory outage reads as a failed login rather
// than a 5xx.
type DirectoryProvider struct {
	cfg DirectoryConfig
	// sem bounds concurrent binds so one slow directory cannot pile up
	// goroutines behind it.
	sem chan struct{}
}

// NewDirectoryProvider creates an LDAP-backed identity provider
func NewDirectoryProvider(cfg DirectoryConfig) domain.IdentityProvider {
	if cfg.UserAttr == "" {
		cfg.UserAttr = "sAMAccountName"
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &DirectoryProvider{
		cfg: cfg,
		sem: make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Name implements domain.IdentityProvider
func (p *DirectoryProvider) Name() string { return domain.AuthMethodDirectory }

// Verify implements domain.IdentityProvider. The returned user is not
// yet persisted; the orchestrator upserts it.
func (p *DirectoryProvider) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := p.bind(username, password)
	if err != nil {
		log.Printf("directory verify failed for %q: %v", username, err)
		return nil, domain.ErrInvalidCredentials
	}

	return &domain.User{
		Username:      identity.Username,
		Email:         identity.Email,
		FullName:      identity.FullName,
		AuthMethod:    domain.AuthMethodDirectory,
		EmailVerified: true,
		IsActive:      true,
	}, nil
}

func (p *DirectoryProvider) bind(username, password string) (*domain.DirectoryIdentity, error) {
	// An empty password would turn the user bind into an anonymous bind,
	// which some servers accept.
	if password == "" {
		return nil, fmt.Errorf("empty password")
	}

	conn, err := ldap.DialURL(p.cfg.URL, ldap.DialWithDialer(&net.Dialer{Timeout: p.cfg.DialTimeout}))
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := conn.Bind(p.cfg.BindDN, p.cfg.BindPassword); err != nil {
		return nil, fmt.Errorf("service bind: %w", err)
	}

	searchReq := ldap.NewSearchRequest(
		p.cfg.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		fmt.Sprintf("(%s=%s)", p.cfg.UserAttr, ldap.EscapeFilter(username)),
		[]string{"dn", "mail", "displayName"},
		nil,
	)

	result, err := conn.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(result.Entries) == 0 {
		return nil, fmt.Errorf("principal not found")
	}

	entry := result.Entries[0]

	userConn, err := ldap.DialURL(p.cfg.URL, ldap.DialWithDialer(&net.Dialer{Timeout: p.cfg.DialTimeout}))
	if err != nil {
		return nil, fmt.Errorf("user dial: %w", err)
	}
	defer userConn.Close()

	if err := userConn.Bind(entry.DN, password); err != nil {
		return nil, fmt.Errorf("user bind: %w", err)
	}

	email := entry.GetAttributeValue("mail")
	if email == "" {
		email = username + "@company.com"
	}
	fullName := entry.GetAttributeValue("displayName")
	if fullName == "" {
		fullName = username
	}

	return &domain.DirectoryIdentity{
		Username: username,
		Email:    email,
		FullName: fullName,
	}, nil
}
