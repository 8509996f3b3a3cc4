// Package mail sends transactional email.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Secure bool
	From   string
}

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer for the given relay.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.SSL = cfg.Secure
	return &SMTPMailer{dialer: d, from: cfg.From, logger: logger}
}

// Send dials the relay and delivers msg. Each call uses its own connection.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		gm.SetBody("text/plain", msg.Text)
		gm.AddAlternative("text/html", msg.HTML)
	} else {
		gm.SetBody("text/html", msg.HTML)
	}
	if err := m.dialer.DialAndSend(gm); err != nil {
		m.logger.Error("Failed to send email", "to", msg.To, "error", err)
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	m.logger.Info("Email sent", "to", msg.To)
	return nil
}

// LogMailer only logs messages. It is used when no SMTP host is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs msg and returns nil.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("Email (not delivered)", "to", msg.To, "subject", msg.Subject)
	return nil
}

// ActivationMessage builds the account activation email.
func ActivationMessage(to, clientHost, code string) Message {
	link := fmt.Sprintf("%s/auth/activation?activationCode=%s", clientHost, code)
	return Message{
		To:      to,
		Subject: "Activate your account",
		HTML:    fmt.Sprintf(`Click <a href="%s">here</a> to activate your account`, html.EscapeString(link)),
		Text:    "Activate your account: " + link,
	}
}

// NewProductMessage builds the new product announcement.
func NewProductMessage(to, productName string) Message {
	return Message{
		To:      to,
		Subject: "New product available!",
		HTML:    fmt.Sprintf("<h1>New product available: %s</h1>", html.EscapeString(productName)),
		Text:    "New product available: " + productName,
	}
}
