package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bace/apperrors"
	"bace/config"
)

const (
	gatewayTimeout     = 15 * time.Second
	paymentDescription = "Paiement BACE"
)

// PaymentRequest is the body sent to the gateway to open a payment session.
type PaymentRequest struct {
	MerchantID    string  `json:"merchant_id"`
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	SuccessURL    string  `json:"success_url"`
	FailURL       string  `json:"fail_url"`
	NotifyURL     string  `json:"notify_url"`
	CustomerEmail string  `json:"customer_email"`
	Description   string  `json:"description"`
}

type paymentResponse struct {
	PaymentURL string `json:"payment_url"`
}

// Gateway opens hosted payment sessions and returns the URL to redirect to.
type Gateway interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (string, error)
}

// GPGGateway is the HTTP client for the payment gateway.
type GPGGateway struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewGPGGateway(cfg config.Gateway) *GPGGateway {
	return &GPGGateway{
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: gatewayTimeout},
	}
}

func initiationFailed(err error) error {
	return apperrors.Upstream(err, "Payment initiation failed")
}

func (g *GPGGateway) CreatePayment(ctx context.Context, req PaymentRequest) (string, error) {
	if g.apiURL == "" {
		return "", initiationFailed(fmt.Errorf("GPG_API_URL not configured"))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", initiationFailed(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/payment", bytes.NewReader(body))
	if err != nil {
		return "", initiationFailed(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", initiationFailed(fmt.Errorf("gateway request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", initiationFailed(fmt.Errorf("gateway response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", initiationFailed(fmt.Errorf("gateway status %d: %s", resp.StatusCode, raw))
	}

	var out paymentResponse
	if err := json.Unmarshal(raw, &out); err != nil || strings.TrimSpace(out.PaymentURL) == "" {
		return "", apperrors.Wrap(err, apperrors.KindValidation, "Payment gateway did not return a payment URL")
	}
	return out.PaymentURL, nil
}
