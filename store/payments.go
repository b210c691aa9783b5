package store

import (
	"context"
	"database/sql"
	"fmt"

	"gymdesk/models"
)

type PaymentStore struct {
	db *sql.DB
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

// Capture records a verified payment and marks its member Paid in one
// transaction. A payment or order seen before returns ErrDuplicatePayment and
// leaves the member untouched.
func (s *PaymentStore) Capture(ctx context.Context, p *models.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (user_id, order_id, payment_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.UserID, p.OrderID, p.PaymentID, p.Status).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicatePayment
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET fee_status = $1, updated_at = NOW() WHERE id = $2`, models.FeeStatusPaid, p.UserID)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}
	return nil
}

