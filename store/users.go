package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gymdesk/models"
)

const userColumns = `id, name, email, phone, password_hash, role, fee_status, current_plan,
	plan_start_date, plan_end_date, created_at, updated_at`

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

type MemberCounts struct {
	Total   int `json:"totalMembers"`
	Pending int `json:"pendingFees"`
	Paid    int `json:"paidMembers"`
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var end sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.FeeStatus,
		&u.CurrentPlan, &u.PlanStartDate, &end, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		u.PlanEndDate = &t
	}
	return &u, nil
}

// Create inserts u and fills in the generated fields. Email is stored
// lower-cased so lookups are case-insensitive.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleMember
	}
	if u.FeeStatus == "" {
		u.FeeStatus = models.FeeStatusPending
	}
	if u.CurrentPlan == "" {
		u.CurrentPlan = models.DefaultPlanName
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, fee_status, current_plan)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, plan_start_date, created_at, updated_at
	`, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.FeeStatus, u.CurrentPlan,
	).Scan(&u.ID, &u.PlanStartDate, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	return s.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

func (s *UserStore) ListByFeeStatus(ctx context.Context, status models.FeeStatus) ([]models.User, error) {
	return s.query(ctx,
		`SELECT `+userColumns+` FROM users WHERE fee_status = $1 ORDER BY created_at`, status)
}

func (s *UserStore) query(ctx context.Context, q string, args ...any) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateMembership writes the plan and fee fields of u.
func (s *UserStore) UpdateMembership(ctx context.Context, u *models.User) error {
	var end sql.NullTime
	if u.PlanEndDate != nil {
		end = sql.NullTime{Time: *u.PlanEndDate, Valid: true}
	}
	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET current_plan = $1, fee_status = $2, plan_start_date = $3, plan_end_date = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, u.CurrentPlan, u.FeeStatus, u.PlanStartDate, end, u.ID).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return s.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
}

func (s *UserStore) exec(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) CountMembers(ctx context.Context) (MemberCounts, error) {
	var c MemberCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE fee_status = 'Pending'),
		       COUNT(*) FILTER (WHERE fee_status = 'Paid')
		FROM users WHERE role = 'member'
	`).Scan(&c.Total, &c.Pending, &c.Paid)
	if err != nil {
		return MemberCounts{}, fmt.Errorf("count members: %w", err)
	}
	return c, nil
}
