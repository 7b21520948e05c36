package handlers

import (
	"net/http"

	"bace/services"

	"github.com/gin-gonic/gin"
)

type subscribeRequest struct {
	FirstName    string `json:"prenom"`
	LastName     string `json:"nom"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ConfirmPhone string `json:"confirmPhone"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}

	sub, err := h.Registration.Register(c.Request.Context(), services.RegisterRequest{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		ConfirmPhone: req.ConfirmPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"message":      "Registration saved. You can now proceed to payment.",
		"subscriberId": sub.ID,
	})
}
