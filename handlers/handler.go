package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"bace/apperrors"
	"bace/logger"
	"bace/middleware"
	"bace/models"
	"bace/services"
	"bace/storage"

	"github.com/gin-gonic/gin"
)

type PaymentService interface {
	Start(ctx context.Context, req services.StartPayment) (string, error)
	HandleNotification(ctx context.Context, n services.Notification) (services.Outcome, error)
}

type SessionService interface {
	middleware.TokenParser
	Login(ctx context.Context, req services.LoginRequest) (string, *models.SessionUser, error)
	AdminLogin(ctx context.Context, password string) (string, error)
}

type RegistrationService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.Subscriber, error)
}

type OrderService interface {
	Create(ctx context.Context, req services.NewOrder, proof *services.Proof) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListForMember(ctx context.Context, email string) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
	OpenProof(ctx context.Context, id string) (*models.Order, io.ReadCloser, error)
}

// AdminStore is the read side the admin panel and health check use directly.
type AdminStore interface {
	ListSubscribers(ctx context.Context) ([]models.Subscriber, error)
	Stats(ctx context.Context) (*models.Stats, error)
	Ping(ctx context.Context) error
}

type DocumentStore interface {
	List(ctx context.Context) ([]storage.FileInfo, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Handler serves the HTTP API.
type Handler struct {
	Payments      PaymentService
	Sessions      SessionService
	Registration  RegistrationService
	Orders        OrderService
	Admin         AdminStore
	Documents     DocumentStore
	WebhookSecret string
}

// respondError answers {ok:false, message} with the status of the error kind.
// Causes are logged, never sent.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	status := appErr.Status()
	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("kind", string(appErr.Kind)), slog.Any("error", appErr))
	} else {
		log.Debug("request rejected", slog.String("kind", string(appErr.Kind)), slog.String("message", appErr.Message))
	}
	c.JSON(status, gin.H{"ok": false, "message": appErr.Message})
}

func badRequest(c *gin.Context, message string) {
	respondError(c, apperrors.Validation(message))
}
