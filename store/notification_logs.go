package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gymdesk/models"
)

// NotificationLogStore is append-only: there is no update or delete path.
type NotificationLogStore struct {
	db *sql.DB
}

func NewNotificationLogStore(db *sql.DB) *NotificationLogStore {
	return &NotificationLogStore{db: db}
}

func (s *NotificationLogStore) Create(ctx context.Context, l *models.NotificationLog) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notification_logs
			(user_id, name, email, phone, category, type, status, email_status, sms_status, message, fallback_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, l.UserID, l.Name, l.Email, l.Phone, l.Category, l.Type, l.Status,
		l.EmailStatus, l.SMSStatus, l.Message, l.FallbackUsed,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}

// Recent returns the newest limit records, newest first.
func (s *NotificationLogStore) Recent(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, email, phone, category, type, status, email_status, sms_status,
		       message, fallback_used, created_at
		FROM notification_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	defer rows.Close()

	logs := []models.NotificationLog{}
	for rows.Next() {
		var l models.NotificationLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.Email, &l.Phone, &l.Category, &l.Type, &l.Status,
			&l.EmailStatus, &l.SMSStatus, &l.Message, &l.FallbackUsed, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *NotificationLogStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notification_logs WHERE created_at >= $1", since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count notification logs: %w", err)
	}
	return n, nil
}
