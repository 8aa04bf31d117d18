package infra

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/smtp"
	"time"

	"stockroom/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending transactional emails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	breaker  *Breaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewBreaker(3, time.Minute),
	}
}

// SendPasswordReset mails the reset link and waits for the SMTP server to
// accept it. After three straight SMTP failures requests fail fast for a
// minute instead of each waiting on a dead relay.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, link string) error {
	if m.host == "" {
		return errors.New("mailer: SMTP_HOST not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	err := m.breaker.Do(func() error {
		return m.passwordResetEmail(to, link).Send(m.addr, auth)
	})
	if err != nil {
		return fmt.Errorf("mailer: send password reset: %w", err)
	}
	return nil
}

// Status is "disabled" without SMTP_HOST, otherwise the breaker state.
func (m *Mailer) Status() string {
	if m.host == "" {
		return "disabled"
	}
	return m.breaker.State().String()
}

func (m *Mailer) passwordResetEmail(to, link string) *email.Email {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = "Password reset request"
	e.Text = []byte(fmt.Sprintf(
		"We received a request to reset your password.\n\nOpen the link below to choose a new one:\n%s\n\nIf you did not ask for this, you can ignore this email.\n",
		link,
	))
	e.HTML = []byte(fmt.Sprintf(
		`<p>We received a request to reset your password.</p><p><a href="%s">Choose a new password</a></p><p>If you did not ask for this, you can ignore this email.</p>`,
		html.EscapeString(link),
	))
	return e
}
