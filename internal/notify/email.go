package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"govwatcher/internal/config"
)

// EmailNotifier sends the digest as a plain-text message over SMTP.
type EmailNotifier struct {
	cfg  config.EmailConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier wires the SMTP transport.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail}
}

// Publish sends one message to every configured recipient.
func (n *EmailNotifier) Publish(_ context.Context, digest Digest) error {
	if n.cfg.Host == "" || n.cfg.From == "" || len(n.cfg.To) == 0 {
		return fmt.Errorf("email notifier misconfigured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(n.cfg.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", digest.Subject())
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(digest.Body())

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.From, n.cfg.To, []byte(msg.String())); err != nil {
		return fmt.Errorf("send digest mail: %w", err)
	}
	return nil
}
