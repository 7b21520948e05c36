package handlers

import (
	"errors"
	"io"
	"net/http"

	"bace/middleware"
	"bace/services"

	"github.com/gin-gonic/gin"
)

// CreateOrder accepts the manual bank-transfer order form with its proof of
// payment.
func (h *Handler) CreateOrder(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxProofSize+1<<20)

	req := services.NewOrder{
		Profile:   c.PostForm("profile"),
		FirstName: c.PostForm("prenom"),
		LastName:  c.PostForm("nom"),
		Phone:     c.PostForm("telephone"),
		Email:     c.PostForm("email"),
		School:    c.PostForm("lycee"),
		Price:     c.PostForm("price"),
	}

	var proof *services.Proof
	header, err := c.FormFile("paymentProof")
	switch {
	case err == nil:
		if header.Size > services.MaxProofSize {
			badRequest(c, "Proof of payment must be at most 5 MB")
			return
		}
		f, err := header.Open()
		if err != nil {
			badRequest(c, "Unreadable upload")
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, services.MaxProofSize+1))
		f.Close()
		if err != nil {
			badRequest(c, "Unreadable upload")
			return
		}
		proof = &services.Proof{Filename: header.Filename, Data: data}
	case errors.Is(err, http.ErrMissingFile):
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			badRequest(c, "Proof of payment must be at most 5 MB")
			return
		}
		badRequest(c, "Invalid form data")
		return
	}

	order, err := h.Orders.Create(c.Request.Context(), req, proof)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "orderId": order.ID})
}

// MyOrders lists the orders placed with the member's email.
func (h *Handler) MyOrders(c *gin.Context) {
	var email string
	if claims := middleware.Claims(c); claims != nil {
		email = claims.Email
	}
	orders, err := h.Orders.ListForMember(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": orders})
}
