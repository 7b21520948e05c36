package db

import (
	"context"
	"fmt"

	"bace/models"
)

// Stats aggregates the admin dashboard counters. Revenue counts every order
// that is no longer pending.
func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	st := &models.Stats{OrdersByStatus: map[string]int{
		models.OrderPending:   0,
		models.OrderProcessed: 0,
		models.OrderShipped:   0,
		models.OrderDelivered: 0,
	}}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE paid)
		FROM subscribers
	`).Scan(&st.Subscribers, &st.PaidSubscribers)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscribers: %w", err)
	}
	st.Unpaid = st.Subscribers - st.PaidSubscribers

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(price), 0)
		FROM orders
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count, sum int
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan order stats: %w", err)
		}
		st.OrdersByStatus[status] = count
		st.Orders += count
		if status != models.OrderPending {
			st.Revenue += sum
		}
	}
	return st, rows.Err()
}
