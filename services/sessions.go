package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bace/apperrors"
	"bace/db"
	"bace/logger"
	"bace/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	memberTokenTTL = 24 * time.Hour
	adminTokenTTL  = 8 * time.Hour
)

var (
	ErrTokenInvalid = errors.New("invalid or expired token")
	ErrNotAdmin     = errors.New("token does not grant admin access")
)

type CredentialLookup interface {
	GetSubscriberByCredentials(ctx context.Context, email, code4 string) (*models.Subscriber, error)
}

// Sessions issues and verifies HS256 session tokens for members and the admin.
type Sessions struct {
	store     CredentialLookup
	secret    []byte
	adminHash []byte
	now       func() time.Time
}

// AdminPasswordHash resolves the admin password hash from config. A plain
// password is hashed once. Neither set means admin login is disabled.
func AdminPasswordHash(hash, password string) ([]byte, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
		}
		return []byte(hash), nil
	}
	if password == "" {
		return nil, nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return h, nil
}

func NewSessions(store CredentialLookup, secret string, adminHash []byte) *Sessions {
	return &Sessions{store: store, secret: []byte(secret), adminHash: adminHash, now: time.Now}
}

type LoginRequest struct {
	Email   string
	Code4   string
	QRValue string
}

// Login checks the email/code pair, then the scanned QR value, then that the
// subscription is activated.
func (s *Sessions) Login(ctx context.Context, req LoginRequest) (string, *models.SessionUser, error) {
	email := db.NormalizeEmail(req.Email)
	code := strings.TrimSpace(req.Code4)
	if email == "" || code == "" || strings.TrimSpace(req.QRValue) == "" {
		return "", nil, apperrors.Validation("Email, code and QR code are required")
	}

	sub, err := s.store.GetSubscriberByCredentials(ctx, email, code)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil, apperrors.Validation("Invalid credentials")
	}
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}

	expected := QRPayload(sub.Email, sub.Code4)
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.QRValue)), []byte(expected)) != 1 {
		return "", nil, apperrors.Validation("Invalid QR code")
	}
	if !sub.Paid {
		return "", nil, apperrors.Forbidden("Account not activated")
	}

	now := s.now()
	token, err := s.sign(models.SessionClaims{
		ID:        sub.ID,
		Email:     sub.Email,
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(memberTokenTTL)),
		},
	})
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}

	logger.FromContext(ctx).Info("member logged in", slog.String("subscriber_id", sub.ID))
	return token, &models.SessionUser{ID: sub.ID, Email: sub.Email, FirstName: sub.FirstName, LastName: sub.LastName}, nil
}

// AdminLogin exchanges the admin password for an admin token.
func (s *Sessions) AdminLogin(ctx context.Context, password string) (string, error) {
	if len(s.adminHash) == 0 || password == "" ||
		bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) != nil {
		logger.FromContext(ctx).Warn("admin login rejected")
		return "", apperrors.Unauthorized("Incorrect admin password")
	}

	now := s.now()
	token, err := s.sign(models.SessionClaims{
		Role:   models.RoleAdmin,
		Access: "full",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
	})
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return token, nil
}

func (s *Sessions) sign(claims models.SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a token's signature and expiry.
func (s *Sessions) Parse(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseMember accepts only tokens that identify a subscriber.
func (s *Sessions) ParseMember(tokenString string) (*models.SessionClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseAdmin accepts only admin tokens.
func (s *Sessions) ParseAdmin(tokenString string) (*models.SessionClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleAdmin {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
