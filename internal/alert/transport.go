package alert

import (
	"fmt"
	"net/smtp"
	"strings"

	"outreach-tracker/internal/config"
)

// Transport delivers one rendered alert payload. Implementations fail fast;
// the batch job falls back to persisting the payload on any error.
type Transport interface {
	Send(subject, html string) error
}

// SMTPTransport sends alert payloads over plain SMTP to the configured
// sender address.
type SMTPTransport struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// NewSMTPTransport builds a transport from config. Returns nil when SMTP is
// not configured; callers treat a nil transport as "store instead of send".
func NewSMTPTransport(cfg *config.Config) *SMTPTransport {
	if cfg.SMTP.Host == "" || cfg.SMTP.User == "" || cfg.SMTP.Pass == "" {
		return nil
	}
	from := cfg.SMTP.From
	if from == "" {
		from = cfg.SMTP.User
	}
	return &SMTPTransport{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: from,
	}
}

func (t *SMTPTransport) Send(subject, html string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", t.From)
	fmt.Fprintf(&msg, "To: %s\r\n", t.From)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	addr := fmt.Sprintf("%s:%d", t.Host, t.Port)
	auth := smtp.PlainAuth("", t.User, t.Pass, t.Host)
	return smtp.SendMail(addr, auth, t.From, []string{t.From}, []byte(msg.String()))
}
