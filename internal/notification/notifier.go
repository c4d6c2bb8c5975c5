package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/model"

	log "github.com/sirupsen/logrus"
)

// New returns an e-mail notifier when SMTP is configured and a log notifier otherwise.
func New(cfg config.SMTPConfig) model.Notifier {
	if cfg.Host == "" || cfg.To == "" {
		return NewLogNotifier(log.StandardLogger())
	}
	return NewEmailNotifier(cfg)
}

// EmailNotifier implements the Notifier interface for sending emails.
type EmailNotifier struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		// PlainAuth will not send credentials until the server identifies itself as a trusted one.
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &EmailNotifier{cfg: cfg, auth: auth, send: smtp.SendMail}
}

// Send sends an email to the configured recipients.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	recipients := splitRecipients(n.cfg.To)
	if len(recipients) == 0 {
		return fmt.Errorf("no e-mail recipients configured")
	}

	msg := buildMessage(n.cfg.From, n.cfg.To, subject, body)
	if err := n.send(addr, n.auth, n.cfg.From, recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte("To: " + to + "\r\n" +
		"From: " + from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body)
}

func splitRecipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// LogNotifier writes notifications to the logger. It is used when no SMTP
// server is configured.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier that logs at warning level.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification.
func (n *LogNotifier) Send(subject, body string) error {
	n.logger.WithField("subject", subject).Warn(body)
	return nil
}
