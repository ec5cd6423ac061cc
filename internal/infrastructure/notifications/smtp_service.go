package notifications

import (
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/promptshare/authsvc/domain"
)

// SMTPServiceImpl implements domain.NotificationService
type SMTPServiceImpl struct {
	host     string
	port     int
	username string
	password string
	from     string
	enabled  bool
}

// NewSMTPService creates a new SMTP notification service
func NewSMTPService(host string, port int, username, password, from string, enabled bool) domain.NotificationService {
	return &SMTPServiceImpl{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		enabled:  enabled,
	}
}

// SendEmail implements domain.NotificationService
func (s *SMTPServiceImpl) SendEmail(to, subject, body string) error {
	// If delivery is not configured, log instead of sending
	if !s.enabled || s.host == "" {
		fmt.Printf("[MOCK EMAIL] To: %s, Subject: %s\n%s\n", to, subject, body)
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
	}
	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
