package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bace/models"

	"github.com/google/uuid"
)

const subscriberColumns = `id, first_name, last_name, email, phone, paid, code4, qr_code, qr_data_url, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*models.Subscriber, error) {
	var s models.Subscriber
	var code4, qrCode, qrDataURL sql.NullString
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Paid,
		&code4, &qrCode, &qrDataURL, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Code4 = nullString(code4)
	s.QRCode = nullString(qrCode)
	s.QRDataURL = nullString(qrDataURL)
	return &s, nil
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateSubscriber inserts an unpaid subscriber and fills in ID and CreatedAt.
func (s *Store) CreateSubscriber(ctx context.Context, sub *models.Subscriber) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, paid, created_at
	`, sub.FirstName, sub.LastName, NormalizeEmail(sub.Email), sub.Phone).Scan(&sub.ID, &sub.Paid, &sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	sub.Email = NormalizeEmail(sub.Email)
	return nil
}

// GetSubscriber returns ErrNotFound for unknown and malformed ids alike.
func (s *Store) GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE id = $1`, id)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}
	return sub, nil
}

// GetSubscriberByCredentials looks a subscriber up by email and access code.
func (s *Store) GetSubscriberByCredentials(ctx context.Context, email, code4 string) (*models.Subscriber, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE LOWER(email) = $1 AND code4 = $2
	`, NormalizeEmail(email), code4)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}
	return sub, nil
}

func (s *Store) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	subs := []models.Subscriber{}
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// IssueCredentials marks the subscriber paid and attaches the credentials in
// one conditional update. It returns ErrAlreadyIssued when a code is already
// present, which is how concurrent deliveries of the same notification lose.
func (s *Store) IssueCredentials(ctx context.Context, id string, creds models.Credentials) (*models.Subscriber, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE subscribers
		SET paid = TRUE, code4 = $2, qr_code = $3, qr_data_url = $4
		WHERE id = $1 AND code4 IS NULL
		RETURNING `+subscriberColumns,
		id, creds.Code4, creds.QRCode, creds.QRDataURL)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := s.GetSubscriber(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyIssued
	}
	if err != nil {
		return nil, fmt.Errorf("failed to issue credentials: %w", err)
	}
	return sub, nil
}
