package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bace/models"

	"github.com/google/uuid"
)

const orderColumns = `id, profile, first_name, last_name, phone, email, school, price,
	payment_proof_path, payment_proof_name, status, created_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.Profile, &o.FirstName, &o.LastName, &o.Phone, &o.Email, &o.School,
		&o.Price, &o.PaymentProofPath, &o.PaymentProofName, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder inserts a pending order and fills in ID, Status and CreatedAt.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO orders (profile, first_name, last_name, phone, email, school, price,
			payment_proof_path, payment_proof_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, created_at
	`, o.Profile, o.FirstName, o.LastName, o.Phone, o.Email, o.School, o.Price,
		o.PaymentProofPath, o.PaymentProofName).Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// ListOrders returns all orders, newest first. A non-empty email restricts the
// result to that customer.
func (s *Store) ListOrders(ctx context.Context, email string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if email != "" {
		query += ` WHERE LOWER(email) = $1`
		args = append(args, NormalizeEmail(email))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	o, err := scanOrder(s.db.QueryRowContext(ctx, `
		UPDATE orders SET status = $2 WHERE id = $1
		RETURNING `+orderColumns, id, status))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return o, nil
}
