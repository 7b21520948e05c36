package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bace/apperrors"
	"bace/db"
	"bace/logger"
	"bace/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxProofSize is the largest accepted proof-of-payment upload.
const MaxProofSize = 5 << 20

var allowedProofTypes = []string{"image/png", "image/jpeg", "application/pdf"}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, email string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error)
}

// FileStore keeps uploaded proofs of payment.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

type OrderSender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, proof Attachment) error
}

type OrderAlerter interface {
	OrderReceived(ctx context.Context, order *models.Order) error
}

type NewOrder struct {
	Profile   string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	School    string
	Price     string
}

// Proof is an uploaded proof of payment.
type Proof struct {
	Filename string
	Data     []byte
}

// Orders handles the manual bank-transfer flow and its admin review.
type Orders struct {
	store  OrderStore
	files  FileStore
	sender OrderSender
	alerts OrderAlerter
	bg     *Background
}

func NewOrders(store OrderStore, files FileStore, sender OrderSender, alerts OrderAlerter, bg *Background) *Orders {
	return &Orders{store: store, files: files, sender: sender, alerts: alerts, bg: bg}
}

// Create stores the proof and the pending order. The confirmation email and
// admin alert do not block the caller.
func (s *Orders) Create(ctx context.Context, req NewOrder, proof *Proof) (*models.Order, error) {
	profile := strings.TrimSpace(req.Profile)
	if profile == "" {
		return nil, apperrors.Validation("profile is required")
	}
	order := &models.Order{
		Profile:   profile,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     db.NormalizeEmail(req.Email),
		School:    strings.TrimSpace(req.School),
		Price:     OrderPrice(profile, req.Price),
	}
	if order.FirstName == "" || order.LastName == "" || order.Phone == "" || order.Email == "" {
		return nil, apperrors.Validation("Missing required fields")
	}
	if !ValidEmail(order.Email) {
		return nil, apperrors.Validation("Invalid email address")
	}
	if proof == nil || len(proof.Data) == 0 {
		return nil, apperrors.Validation("Proof of payment is required")
	}
	if len(proof.Data) > MaxProofSize {
		return nil, apperrors.Validation("Proof of payment must be at most 5 MB")
	}

	mtype := mimetype.Detect(proof.Data)
	if !mimetype.EqualsAny(mtype.String(), allowedProofTypes...) {
		return nil, apperrors.Validation("Only PNG, JPEG and PDF files are allowed")
	}

	name := uuid.NewString() + mtype.Extension()
	if err := s.files.Save(ctx, name, bytes.NewReader(proof.Data)); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("save proof: %w", err))
	}
	order.PaymentProofPath = name
	order.PaymentProofName = proofName(proof.Filename, mtype.Extension())

	if err := s.store.CreateOrder(ctx, order); err != nil {
		if delErr := s.files.Delete(ctx, name); delErr != nil {
			logger.FromContext(ctx).Warn("failed to remove orphaned proof", slog.Any("error", delErr))
		}
		return nil, apperrors.Internal(err)
	}

	logger.FromContext(ctx).Info("order created",
		slog.String("order_id", order.ID), slog.String("profile", order.Profile), slog.Int("price", order.Price))

	attachment := Attachment{Filename: order.PaymentProofName, ContentType: mtype.String(), Content: proof.Data}
	s.bg.Go(ctx, "order_confirmation", emailTimeout, func(ctx context.Context) error {
		return s.sender.SendOrderConfirmation(ctx, order, attachment)
	})
	if s.alerts != nil {
		s.bg.Go(ctx, "slack_order", alertTimeout, func(ctx context.Context) error {
			return s.alerts.OrderReceived(ctx, order)
		})
	}
	return order, nil
}

// proofName is the download name shown to admins.
func proofName(original, ext string) string {
	name := strings.TrimSpace(original)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "proof" + ext
	}
	return name
}

func (s *Orders) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, "")
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return orders, nil
}

// ListForMember returns the orders placed with a member's email.
func (s *Orders) ListForMember(ctx context.Context, email string) ([]models.Order, error) {
	if email == "" {
		return []models.Order{}, nil
	}
	orders, err := s.store.ListOrders(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return orders, nil
}

func (s *Orders) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return order, nil
}

func (s *Orders) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if !models.ValidOrderStatus(status) {
		return nil, apperrors.Validation("Invalid status")
	}
	order, err := s.store.UpdateOrderStatus(ctx, id, status)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	logger.FromContext(ctx).Info("order status updated", slog.String("order_id", id), slog.String("status", status))
	return order, nil
}

// OpenProof returns the stored proof of payment of an order.
func (s *Orders) OpenProof(ctx context.Context, id string) (*models.Order, io.ReadCloser, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, order.PaymentProofPath)
	if err != nil {
		return nil, nil, apperrors.NotFound("Proof file not found")
	}
	return order, rc, nil
}
