package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"bace/apperrors"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.Orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}

	order, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Status updated", "order": order})
}

// OrderProof streams the stored proof of payment as an attachment.
func (h *Handler) OrderProof(c *gin.Context) {
	order, rc, err := h.Orders.OpenProof(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(order.PaymentProofPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": order.PaymentProofName}))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		c.Error(err)
	}
}

func (h *Handler) ListSubscribers(c *gin.Context) {
	subs, err := h.Admin.ListSubscribers(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "subscribers": subs})
}
