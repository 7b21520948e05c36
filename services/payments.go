package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bace/apperrors"
	"bace/config"
	"bace/db"
	"bace/logger"
	"bace/models"
)

const (
	StatusSuccess = "SUCCESS"

	emailTimeout = 30 * time.Second
	alertTimeout = 10 * time.Second
)

// Outcome says what a payment notification did.
type Outcome string

const (
	OutcomeIssued        Outcome = models.EventIssued
	OutcomeAlreadyIssued Outcome = models.EventAlreadyIssued
	OutcomeIgnored       Outcome = models.EventIgnored
)

// Notification is the gateway's report about one payment.
type Notification struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// StartPayment is a request to open a gateway payment session for a subscriber.
type StartPayment struct {
	OrderID string
	Email   string
	Amount  float64
}

type PaymentStore interface {
	GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error)
	IssueCredentials(ctx context.Context, id string, creds models.Credentials) (*models.Subscriber, error)
	RecordPaymentEvent(ctx context.Context, e *models.PaymentEvent) error
}

type CredentialIssuer interface {
	Generate(ctx context.Context, sub *models.Subscriber) (models.Credentials, error)
	Discard(ctx context.Context, creds models.Credentials) error
}

type CredentialSender interface {
	SendCredentials(ctx context.Context, sub *models.Subscriber, creds models.Credentials) error
}

type PaymentAlerter interface {
	PaymentConfirmed(ctx context.Context, sub *models.Subscriber, transactionID string) error
}

// Payments starts gateway payments and turns successful payment
// notifications into issued credentials.
type Payments struct {
	store      PaymentStore
	creds      CredentialIssuer
	sender     CredentialSender
	alerts     PaymentAlerter
	gateway    Gateway
	bg         *Background
	merchantID string
	baseURL    string
}

func NewPayments(store PaymentStore, creds CredentialIssuer, sender CredentialSender, alerts PaymentAlerter,
	gateway Gateway, bg *Background, cfg *config.Config) *Payments {
	return &Payments{
		store:      store,
		creds:      creds,
		sender:     sender,
		alerts:     alerts,
		gateway:    gateway,
		bg:         bg,
		merchantID: cfg.Gateway.MerchantID,
		baseURL:    cfg.BaseURL,
	}
}

// Start opens a gateway session for an existing, unpaid subscriber and
// returns the URL the client is redirected to.
func (p *Payments) Start(ctx context.Context, req StartPayment) (string, error) {
	if req.OrderID == "" {
		return "", apperrors.Validation("orderId is required")
	}
	if req.Amount <= 0 {
		return "", apperrors.Validation("amount must be greater than zero")
	}
	email := db.NormalizeEmail(req.Email)
	if !ValidEmail(email) {
		return "", apperrors.Validation("A valid email is required")
	}

	sub, err := p.store.GetSubscriber(ctx, req.OrderID)
	if errors.Is(err, db.ErrNotFound) {
		return "", apperrors.NotFound("Subscriber not found")
	}
	if err != nil {
		return "", apperrors.Internal(err)
	}
	if sub.Paid {
		return "", apperrors.Conflict("Subscription already paid")
	}

	url, err := p.gateway.CreatePayment(ctx, PaymentRequest{
		MerchantID:    p.merchantID,
		OrderID:       sub.ID,
		Amount:        req.Amount,
		Currency:      config.Currency,
		SuccessURL:    p.baseURL + "/api/payment/success",
		FailURL:       p.baseURL + "/api/payment/failure",
		NotifyURL:     p.baseURL + "/api/payment/notify",
		CustomerEmail: email,
		Description:   paymentDescription,
	})
	if err != nil {
		logger.FromContext(ctx).Error("payment initiation failed",
			slog.String("order_id", sub.ID), slog.Any("error", err))
		return "", err
	}

	logger.FromContext(ctx).Info("payment started", slog.String("order_id", sub.ID))
	return url, nil
}

// HandleNotification applies a gateway notification. Only SUCCESS issues
// credentials, and only once per subscriber: a replay, or a delivery that
// loses a race with another one, is a no-op.
func (p *Payments) HandleNotification(ctx context.Context, n Notification) (Outcome, error) {
	log := logger.FromContext(ctx).With(
		slog.String("order_id", n.OrderID),
		slog.String("transaction_id", n.TransactionID),
	)

	if n.Status != StatusSuccess {
		log.Warn("payment not successful", slog.String("status", n.Status))
		p.record(ctx, n, models.EventIgnored)
		return OutcomeIgnored, nil
	}

	sub, err := p.store.GetSubscriber(ctx, strings.TrimSpace(n.OrderID))
	if errors.Is(err, db.ErrNotFound) {
		p.record(ctx, n, models.EventNotFound)
		return "", apperrors.NotFound("Subscriber not found")
	}
	if err != nil {
		p.record(ctx, n, models.EventFailed)
		return "", apperrors.Internal(err)
	}

	if sub.Issued() {
		log.Info("credentials already issued, ignoring replay")
		p.record(ctx, n, models.EventAlreadyIssued)
		return OutcomeAlreadyIssued, nil
	}

	creds, err := p.creds.Generate(ctx, sub)
	if err != nil {
		p.record(ctx, n, models.EventFailed)
		return "", apperrors.Internal(fmt.Errorf("generate credentials: %w", err))
	}

	issued, err := p.store.IssueCredentials(ctx, sub.ID, creds)
	if err != nil {
		if discardErr := p.creds.Discard(ctx, creds); discardErr != nil {
			log.Warn("failed to discard qr image", slog.Any("error", discardErr))
		}
		if errors.Is(err, db.ErrAlreadyIssued) {
			log.Info("credentials issued by a concurrent notification")
			p.record(ctx, n, models.EventAlreadyIssued)
			return OutcomeAlreadyIssued, nil
		}
		p.record(ctx, n, models.EventFailed)
		return "", apperrors.Internal(fmt.Errorf("persist credentials: %w", err))
	}

	log.Info("payment confirmed", slog.String("email", issued.Email))
	p.record(ctx, n, models.EventIssued)

	p.bg.Go(ctx, "send_credentials", emailTimeout, func(ctx context.Context) error {
		return p.sender.SendCredentials(ctx, issued, creds)
	})
	if p.alerts != nil {
		p.bg.Go(ctx, "slack_payment", alertTimeout, func(ctx context.Context) error {
			return p.alerts.PaymentConfirmed(ctx, issued, n.TransactionID)
		})
	}
	return OutcomeIssued, nil
}

// record appends the delivery to the audit log. Failures are only logged.
func (p *Payments) record(ctx context.Context, n Notification, outcome string) {
	event := &models.PaymentEvent{
		OrderID:       n.OrderID,
		Status:        n.Status,
		TransactionID: n.TransactionID,
		Outcome:       outcome,
	}
	if err := p.store.RecordPaymentEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("failed to record payment event", slog.Any("error", err))
	}
}
