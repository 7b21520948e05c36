package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bace/apperrors"
	"bace/config"
	"bace/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

const sendGridEndpoint = "/v3/mail/send"

type Address struct {
	Name  string
	Email string
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Email is a provider-neutral transactional message.
type Email struct {
	To          []Address
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers transactional email. Provider failures come back as
// upstream errors.
type Mailer interface {
	Send(ctx context.Context, email *Email) error
	Provider() string
}

// NewMailer picks SendGrid when an API key is configured, SMTP when a host
// is, and otherwise a mailer that only logs.
func NewMailer(cfg config.Email) Mailer {
	from := Address{Name: cfg.FromName, Email: cfg.FromEmail}
	switch {
	case cfg.SendGridAPIKey != "":
		return NewSendGridMailer(cfg.SendGridAPIKey, "", from)
	case cfg.SMTPHost != "":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, from)
	default:
		return DisabledMailer{}
	}
}

func emailFailed(err error) error {
	return apperrors.Upstream(err, "Email delivery failed")
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   Address
}

// NewSendGridMailer talks to the SendGrid v3 API. An empty host means the
// public API.
func NewSendGridMailer(apiKey, host string, from Address) *SendGridMailer {
	client := sendgrid.NewSendClient(apiKey)
	if host != "" {
		client.Request.BaseURL = strings.TrimRight(host, "/") + sendGridEndpoint
	}
	return &SendGridMailer{client: client, from: from}
}

func (m *SendGridMailer) Provider() string { return "sendgrid" }

func (m *SendGridMailer) Send(ctx context.Context, e *Email) error {
	if len(e.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	from := mail.NewEmail(m.from.Name, m.from.Email)
	to := mail.NewEmail(e.To[0].Name, e.To[0].Email)
	message := mail.NewSingleEmail(from, e.Subject, to, e.Text, e.HTML)
	for _, extra := range e.To[1:] {
		message.Personalizations[0].AddTos(mail.NewEmail(extra.Name, extra.Email))
	}

	for _, a := range e.Attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return emailFailed(fmt.Errorf("sendgrid request: %w", err))
	}
	if response.StatusCode >= 400 {
		return emailFailed(fmt.Errorf("sendgrid status %d: %s", response.StatusCode, response.Body))
	}

	logger.FromContext(ctx).Info("email sent",
		slog.String("provider", m.Provider()),
		slog.Int("status", response.StatusCode),
		slog.String("subject", e.Subject),
	)
	return nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   Address
}

func NewSMTPMailer(host string, port int, user, password string, from Address) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) Provider() string { return "smtp" }

// message builds the MIME message handed to the dialer.
func (m *SMTPMailer) message(e *Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from.Email, m.from.Name)

	to := make([]string, 0, len(e.To))
	for _, addr := range e.To {
		to = append(to, msg.FormatAddress(addr.Email, addr.Name))
	}
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/plain", e.Text)
	if e.HTML != "" {
		msg.AddAlternative("text/html", e.HTML)
	}

	for _, a := range e.Attachments {
		content := a.Content
		msg.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return msg
}

func (m *SMTPMailer) Send(ctx context.Context, e *Email) error {
	if len(e.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(m.message(e)) }()

	select {
	case err := <-done:
		if err != nil {
			return emailFailed(fmt.Errorf("smtp send: %w", err))
		}
	case <-ctx.Done():
		return emailFailed(ctx.Err())
	}

	logger.FromContext(ctx).Info("email sent",
		slog.String("provider", m.Provider()),
		slog.String("subject", e.Subject),
	)
	return nil
}

// DisabledMailer is used when no provider is configured.
type DisabledMailer struct{}

func (DisabledMailer) Provider() string { return "disabled" }

func (DisabledMailer) Send(ctx context.Context, e *Email) error {
	logger.FromContext(ctx).Warn("email provider not configured, skipping email",
		slog.String("subject", e.Subject),
		slog.Int("recipients", len(e.To)),
	)
	return nil
}
