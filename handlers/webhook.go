package handlers

import (
	"io"
	"net/http"

	"bace/apperrors"
	"bace/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxWebhookBody = 1 << 20

// PaymentNotify receives the gateway's payment notification. The signature is
// checked against the raw body before anything else.
func (h *Handler) PaymentNotify(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "Unreadable body")
		return
	}

	if !services.VerifySignature(h.WebhookSecret, body, c.GetHeader(services.SignatureHeader)) {
		respondError(c, apperrors.New(apperrors.KindUnauthorizedWebhook, "Invalid webhook signature"))
		return
	}

	var n services.Notification
	if err := binding.JSON.BindBody(body, &n); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}

	outcome, err := h.Payments.HandleNotification(c.Request.Context(), n)
	if err != nil {
		respondError(c, err)
		return
	}

	if outcome == services.OutcomeIgnored {
		c.String(http.StatusOK, "Payment not successful")
		return
	}
	c.String(http.StatusOK, "OK")
}
