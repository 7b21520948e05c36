package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bace/apperrors"
	"bace/db"
	"bace/logger"
	"bace/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidEmail reports whether email is a syntactically valid address.
func ValidEmail(email string) bool {
	return email != "" && validate.Var(email, "required,email") == nil
}

type SubscriberCreator interface {
	CreateSubscriber(ctx context.Context, sub *models.Subscriber) error
}

type Registration struct {
	store SubscriberCreator
}

func NewRegistration(store SubscriberCreator) *Registration {
	return &Registration{store: store}
}

type RegisterRequest struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	ConfirmPhone string
}

// Register creates an unpaid subscriber.
func (r *Registration) Register(ctx context.Context, req RegisterRequest) (*models.Subscriber, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := db.NormalizeEmail(req.Email)
	phone := strings.TrimSpace(req.Phone)
	confirm := strings.TrimSpace(req.ConfirmPhone)

	if firstName == "" || lastName == "" || email == "" || phone == "" {
		return nil, apperrors.Validation("All fields are required")
	}
	if confirm == "" {
		return nil, apperrors.Validation("Please confirm your phone number")
	}
	if phone != confirm {
		return nil, apperrors.Validation("Phone numbers do not match")
	}
	if !ValidEmail(email) {
		return nil, apperrors.Validation("Invalid email address")
	}

	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscriber{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     normalized,
	}
	if err := r.store.CreateSubscriber(ctx, sub); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("This email is already registered")
		}
		return nil, apperrors.Internal(err)
	}

	logger.FromContext(ctx).Info("subscriber registered", slog.String("subscriber_id", sub.ID))
	return sub, nil
}
