package handlers

import (
	"net/http"

	"bace/middleware"
	"bace/services"

	"github.com/gin-gonic/gin"
)

type qrLoginRequest struct {
	Email   string `json:"email"`
	Code4   string `json:"code4"`
	QRValue string `json:"qrValue"`
}

// LoginWithQR signs a member in with email, access code and scanned QR value.
func (h *Handler) LoginWithQR(c *gin.Context) {
	var req qrLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}

	token, user, err := h.Sessions.Login(c.Request.Context(), services.LoginRequest{
		Email:   req.Email,
		Code4:   req.Code4,
		QRValue: req.QRValue,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}

	token, err := h.Sessions.AdminLogin(c.Request.Context(), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Admin login successful", "token": token})
}

// VerifyAuth echoes the session of a valid member token.
func (h *Handler) VerifyAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"user":    middleware.Claims(c),
		"message": "Authenticated",
	})
}

// Logout is a no-op for stateless tokens; clients drop theirs.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Logged out"})
}
