package db

import (
	"context"
	"fmt"

	"bace/models"
)

// RecordPaymentEvent appends a webhook delivery to the audit log.
func (s *Store) RecordPaymentEvent(ctx context.Context, e *models.PaymentEvent) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO payment_events (order_id, status, transaction_id, outcome)
		VALUES ($1, $2, $3, $4)
		RETURNING id, received_at
	`, e.OrderID, e.Status, e.TransactionID, e.Outcome).Scan(&e.ID, &e.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to record payment event: %w", err)
	}
	return nil
}

func (s *Store) ListPaymentEvents(ctx context.Context, orderID string) ([]models.PaymentEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, status, transaction_id, outcome, received_at
		FROM payment_events
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment events: %w", err)
	}
	defer rows.Close()

	events := []models.PaymentEvent{}
	for rows.Next() {
		var e models.PaymentEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.TransactionID, &e.Outcome, &e.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
