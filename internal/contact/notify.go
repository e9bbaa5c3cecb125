package contact

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Notifier forwards a stored message somewhere a human will see it.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// SMTPConfig holds mail server settings for SMTPNotifier.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// Enabled reports whether credentials are configured.
func (c SMTPConfig) Enabled() bool {
	return c.User != "" && c.Pass != "" && c.Host != "" && c.To != ""
}

// SMTPNotifier emails each message to the site owner.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier returns nil when cfg has no credentials.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if !cfg.Enabled() {
		return nil
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

// Notify sends m to the configured address. net/smtp has no context
// support, so ctx is only checked before dialing.
func (n *SMTPNotifier) Notify(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.User, []string{n.cfg.To}, n.compose(m)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) compose(m Message) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Message ID %s
`, m.Name, m.Email, m.Subject, m.Body, m.ID)

	var b strings.Builder
	b.WriteString("To: " + n.cfg.To + "\r\n")
	b.WriteString("Subject: Portfolio Contact: " + headerSafe(m.Subject) + "\r\n")
	b.WriteString("From: " + n.cfg.User + "\r\n")
	b.WriteString("Reply-To: " + headerSafe(m.Email) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// headerSafe strips line breaks so user input cannot add headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
