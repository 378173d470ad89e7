package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pricetrack/config"

	"gopkg.in/gomail.v2"
)

// Notifier delivers a message to a user
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// EmailNotifier sends alerts over SMTP
type EmailNotifier struct {
	cfg *config.MailConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.MailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// Send sends a multipart email with a plain-text and an HTML part
func (n *EmailNotifier) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !n.cfg.IsValid() {
		return fmt.Errorf("email config missing")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	log.Printf("📧 Price alert sent to %s", to)
	return nil
}
