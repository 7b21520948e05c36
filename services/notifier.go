package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"bace/config"
	"bace/logger"
	"bace/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ImageReader reads back a stored QR image for attachment.
type ImageReader interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Notifier composes the transactional emails and hands them to a Mailer.
type Notifier struct {
	mailer     Mailer
	images     ImageReader
	baseURL    string
	senderName string
	adminEmail string
}

func NewNotifier(mailer Mailer, images ImageReader, baseURL string, email config.Email) *Notifier {
	return &Notifier{
		mailer:     mailer,
		images:     images,
		baseURL:    baseURL,
		senderName: email.FromName,
		adminEmail: email.AdminEmail,
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// CredentialsEmail builds the message that delivers a subscriber's access code
// and QR image. The image is attached only when it can be read back.
func (n *Notifier) CredentialsEmail(ctx context.Context, sub *models.Subscriber, creds models.Credentials) (*Email, error) {
	var qrURL, loginURL string
	if n.baseURL != "" {
		qrURL = n.baseURL + creds.QRCode
		loginURL = n.baseURL + "/login"
	}

	html, err := render("credentials.html", map[string]string{
		"FirstName":  sub.FirstName,
		"Code":       creds.Code4,
		"QRURL":      qrURL,
		"LoginURL":   loginURL,
		"SenderName": n.senderName,
	})
	if err != nil {
		return nil, err
	}

	email := &Email{
		To:      []Address{{Name: sub.FullName(), Email: sub.Email}},
		Subject: fmt.Sprintf("Your access code: %s", creds.Code4),
		Text: fmt.Sprintf("Hello %s,\n\nYour payment has been confirmed.\nYour access code: %s\n\nSign in with your email address, this code and the attached QR code.\n",
			sub.FirstName, creds.Code4),
		HTML: html,
	}

	if creds.QRFile != "" && n.images != nil {
		png, err := n.images.ReadFile(ctx, creds.QRFile)
		if err != nil {
			logger.FromContext(ctx).Warn("qr image not readable, sending without attachment",
				slog.String("file", creds.QRFile), slog.Any("error", err))
		} else {
			email.Attachments = append(email.Attachments, Attachment{
				Filename:    fmt.Sprintf("qrcode-%s.png", creds.Code4),
				ContentType: "image/png",
				Content:     png,
			})
		}
	}
	return email, nil
}

// SendCredentials emails the access code and QR image to the subscriber.
func (n *Notifier) SendCredentials(ctx context.Context, sub *models.Subscriber, creds models.Credentials) error {
	email, err := n.CredentialsEmail(ctx, sub, creds)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, email)
}

// SendOrderConfirmation emails the customer, and the admin when configured,
// with the proof of payment attached.
func (n *Notifier) SendOrderConfirmation(ctx context.Context, order *models.Order, proof Attachment) error {
	html, err := render("order.html", map[string]any{
		"OrderID":    order.ID,
		"FirstName":  order.FirstName,
		"LastName":   order.LastName,
		"Profile":    order.Profile,
		"School":     order.School,
		"Phone":      order.Phone,
		"Price":      order.Price,
		"Currency":   config.Currency,
		"SenderName": n.senderName,
	})
	if err != nil {
		return err
	}

	to := []Address{{Name: order.FirstName + " " + order.LastName, Email: order.Email}}
	if n.adminEmail != "" {
		to = append(to, Address{Name: "Admin", Email: n.adminEmail})
	}

	email := &Email{
		To:      to,
		Subject: fmt.Sprintf("Order %s received", order.ID),
		Text: fmt.Sprintf("Hello %s %s,\n\nWe received your order (%s, %d %s) and your proof of payment.\n",
			order.FirstName, order.LastName, order.Profile, order.Price, config.Currency),
		HTML: html,
	}
	if len(proof.Content) > 0 {
		email.Attachments = append(email.Attachments, proof)
	}
	return n.mailer.Send(ctx, email)
}
