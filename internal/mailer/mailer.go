// Package mailer delivers outgoing mail. The auth flow treats delivery as
// fire-and-forget: a failed send is logged, never surfaced to the caller.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"reviewhub/internal/config"
	"reviewhub/pkg/logger"
)

type Notifier interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailer builds a Notifier over plain SMTP with optional AUTH.
func NewSMTPMailer(cfg *config.Config) Notifier {
	return &smtpMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type logMailer struct{}

// NewLogMailer returns a Notifier that only logs, for development setups
// without an SMTP server.
func NewLogMailer() Notifier {
	return logMailer{}
}

func (logMailer) Send(to, subject, body string) error {
	logger.Info().Str("to", to).Str("subject", subject).Msg("mail suppressed (SMTP disabled)")
	return nil
}
