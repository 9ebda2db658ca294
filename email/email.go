package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// SendFunc matches smtp.SendMail so tests can capture outgoing mail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	SiteURL  string
}

// SMTPMailer sends account mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg  Config
	send SendFunc
}

// NewSMTPMailer returns nil when no host is configured; callers treat a nil
// mailer as "mail disabled".
func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Host == "" {
		return nil
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = "http://localhost:8080"
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	if m == nil {
		return errors.New("mail is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", strings.TrimRight(m.cfg.SiteURL, "/"), token)
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf(`Hi %s,

Thanks for signing up. Confirm your email address by opening the link below:

%s

If you did not create an account you can ignore this message.
`, name, link)

	return m.sendMail(to, "Confirm your email", body)
}

func (m *SMTPMailer) sendMail(to, subject, body string) error {
	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", m.cfg.From, to, subject, body)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + m.cfg.Port

	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
