package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bace/config"
	"bace/logger"
	"bace/models"
)

// Slack posts admin alerts to an incoming webhook. A zero value, or one
// built without a URL, skips every alert.
type Slack struct {
	webhookURL string
	client     *http.Client
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *Slack) Enabled() bool {
	return s != nil && s.webhookURL != ""
}

// PaymentConfirmed announces a freshly activated subscriber.
func (s *Slack) PaymentConfirmed(ctx context.Context, sub *models.Subscriber, transactionID string) error {
	return s.post(ctx, fmt.Sprintf("💳 Payment confirmed\n\nSubscriber: %s <%s>\nPhone: %s\nTransaction: %s",
		sub.FullName(), sub.Email, sub.Phone, transactionID))
}

// OrderReceived announces a manual order awaiting review.
func (s *Slack) OrderReceived(ctx context.Context, order *models.Order) error {
	return s.post(ctx, fmt.Sprintf("📦 New order\n\nCustomer: %s %s <%s>\nProfile: %s\nAmount: %d %s\nOrder ID: %s",
		order.FirstName, order.LastName, order.Email, order.Profile, order.Price, config.Currency, order.ID))
}

func (s *Slack) post(ctx context.Context, text string) error {
	if !s.Enabled() {
		logger.FromContext(ctx).Debug("slack skipped: SLACK_WEBHOOK_URL not set")
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send slack request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack api error: status %d", resp.StatusCode)
	}
	logger.FromContext(ctx).Info("slack alert sent", slog.Int("status", resp.StatusCode))
	return nil
}
