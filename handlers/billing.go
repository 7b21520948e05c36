package handlers

import (
	"net/http"

	"bace/services"

	"github.com/gin-gonic/gin"
)

type startPaymentRequest struct {
	Amount  float64 `json:"amount"`
	Email   string  `json:"email"`
	OrderID string  `json:"orderId"`
}

// StartPayment opens a gateway payment session and returns the redirect URL.
func (h *Handler) StartPayment(c *gin.Context) {
	var req startPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}

	url, err := h.Payments.Start(c.Request.Context(), services.StartPayment{
		OrderID: req.OrderID,
		Email:   req.Email,
		Amount:  req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "redirectUrl": url})
}

// PaymentSuccess and PaymentFailure are where the gateway sends the customer
// back to.
func (h *Handler) PaymentSuccess(c *gin.Context) {
	c.Redirect(http.StatusFound, "/?payment=success")
}

func (h *Handler) PaymentFailure(c *gin.Context) {
	c.Redirect(http.StatusFound, "/?payment=failure")
}
