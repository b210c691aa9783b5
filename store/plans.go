package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gymdesk/models"
)

type PlanStore struct {
	db *sql.DB
}

func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

func (s *PlanStore) Create(ctx context.Context, p *models.Plan) error {
	if p.Features == nil {
		p.Features = []string{}
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO plans (name, duration_months, price, features)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.Name, p.DurationMonths, p.Price, pq.Array(p.Features)).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (s *PlanStore) List(ctx context.Context) ([]models.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, duration_months, price, features, created_at
		FROM plans
		ORDER BY duration_months, price
	`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := []models.Plan{}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationMonths, &p.Price, pq.Array(&p.Features), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *PlanStore) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	var p models.Plan
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, duration_months, price, features, created_at
		FROM plans WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.DurationMonths, &p.Price, pq.Array(&p.Features), &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

func (s *PlanStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PlanStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans").Scan(&n); err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}
	return n, nil
}
