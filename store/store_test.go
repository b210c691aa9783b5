package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return conn, mock
}

var userRowColumns = []string{"id", "name", "email", "phone", "password_hash", "role", "fee_status",
	"current_plan", "plan_start_date", "plan_end_date", "created_at", "updated_at"}

func TestUserStoreCreateNormalizesEmail(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Alice", "alice@x.com", "9876543210", "hash", models.RoleMember, models.FeeStatusPending, models.DefaultPlanName).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_start_date", "created_at", "updated_at"}).
			AddRow("u-1", now, now, now))

	u := &models.User{Name: "Alice", Email: "  Alice@X.com ", Phone: "9876543210", PasswordHash: "hash"}
	require.NoError(t, NewUserStore(conn).Create(context.Background(), u))

	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.Equal(t, models.RoleMember, u.Role)
}

func TestUserStoreCreateDuplicate(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	err := NewUserStore(conn).Create(context.Background(), &models.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserStoreGetByEmail(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()
	end := now.AddDate(0, 1, 0)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "Alice", "alice@x.com", "9876543210", "hash", "member", "Pending", "Monthly", now, end, now, now))

	u, err := NewUserStore(conn).GetByEmail(context.Background(), "ALICE@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, models.FeeStatusPending, u.FeeStatus)
	require.NotNil(t, u.PlanEndDate)
	assert.True(t, end.Equal(*u.PlanEndDate))
}

func TestUserStoreGetByIDNotFound(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := NewUserStore(conn).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStoreListByFeeStatus(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE fee_status = \\$1").
		WithArgs(models.FeeStatusPending).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u-1", "Alice", "alice@x.com", "9876543210", "h", "member", "Pending", "Monthly", now, nil, now, now).
			AddRow("u-2", "Bob", "bob@x.com", "", "h", "member", "Pending", "Trial Plan", now, nil, now, now))

	users, err := NewUserStore(conn).ListByFeeStatus(context.Background(), models.FeeStatusPending)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Nil(t, users[1].PlanEndDate)
	assert.Empty(t, users[1].Phone)
}

func TestUserStoreListQueryError(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(errors.New("connection refused"))

	_, err := NewUserStore(conn).List(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestUserStoreUpdateMembership(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs("Quarterly", models.FeeStatusPaid, now, nil, "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &models.User{ID: "u-1", CurrentPlan: "Quarterly", FeeStatus: models.FeeStatusPaid, PlanStartDate: now}
	require.NoError(t, NewUserStore(conn).UpdateMembership(context.Background(), u))
	assert.Equal(t, now, u.UpdatedAt)
}

func TestUserStoreUpdatePasswordNotFound(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash")).
		WithArgs("hash", "u-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUserStore(conn).UpdatePassword(context.Background(), "u-9", "hash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStoreCountMembers(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "paid"}).AddRow(10, 4, 6))

	c, err := NewUserStore(conn).CountMembers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MemberCounts{Total: 10, Pending: 4, Paid: 6}, c)
}

func TestPlanStoreCreateAndList(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plans")).
		WithArgs("Quarterly", 3, 2499.0, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p-1", now))
	mock.ExpectQuery("SELECT (.+) FROM plans").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "duration_months", "price", "features", "created_at"}).
			AddRow("p-1", "Quarterly", 3, "2499.00", "{Cardio,\"Personal trainer\"}", now))

	plans := NewPlanStore(conn)
	p := &models.Plan{Name: "Quarterly", DurationMonths: 3, Price: 2499}
	require.NoError(t, plans.Create(context.Background(), p))
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, []string{}, p.Features)

	list, err := plans.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2499.0, list[0].Price)
	assert.Equal(t, []string{"Cardio", "Personal trainer"}, list[0].Features)
}

func TestPlanStoreDeleteNotFound(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectExec("DELETE FROM plans").WithArgs("p-9").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewPlanStore(conn).Delete(context.Background(), "p-9"), ErrNotFound)
}

func TestNotificationLogStoreCreate(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notification_logs")).
		WithArgs("u-1", "Alice", "alice@x.com", "9876543210", "Fee Reminder", models.ChannelBoth,
			models.OutcomeSuccess, models.DeliverySent, models.DeliverySent,
			"Email: Sent, SMS: Sent (via fallback)", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("l-1", now))

	l := &models.NotificationLog{
		UserID: "u-1", Name: "Alice", Email: "alice@x.com", Phone: "9876543210",
		Category: "Fee Reminder", Type: models.ChannelBoth, Status: models.OutcomeSuccess,
		EmailStatus: models.DeliverySent, SMSStatus: models.DeliverySent,
		Message: "Email: Sent, SMS: Sent (via fallback)", FallbackUsed: true,
	}
	require.NoError(t, NewNotificationLogStore(conn).Create(context.Background(), l))
	assert.Equal(t, "l-1", l.ID)
	assert.Equal(t, now, l.CreatedAt)
}

func TestNotificationLogStoreRecent(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM notification_logs\\s+ORDER BY created_at DESC\\s+LIMIT \\$1").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "email", "phone", "category", "type",
			"status", "email_status", "sms_status", "message", "fallback_used", "created_at"}).
			AddRow("l-2", "u-1", "Alice", "alice@x.com", "9876543210", "Fee Reminder", "Both",
				"Failed", "Failed", "Failed", "Email: Failed, SMS: Failed", false, now))

	logs, err := NewNotificationLogStore(conn).Recent(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.OutcomeFailed, logs[0].Status)
	assert.Equal(t, models.ChannelBoth, logs[0].Type)
}

func TestPaymentStoreCapture(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs("u-1", "order_1", "pay_1", "captured").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("pm-1", now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET fee_status")).
		WithArgs(models.FeeStatusPaid, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := &models.Payment{UserID: "u-1", OrderID: "order_1", PaymentID: "pay_1", Status: "captured"}
	require.NoError(t, NewPaymentStore(conn).Capture(context.Background(), p))
	assert.Equal(t, "pm-1", p.ID)
}

func TestPaymentStoreCaptureReplay(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs("u-2", "order_1", "pay_1", "captured").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "payments_payment_id_key"})
	mock.ExpectRollback()

	p := &models.Payment{UserID: "u-2", OrderID: "order_1", PaymentID: "pay_1", Status: "captured"}
	err := NewPaymentStore(conn).Capture(context.Background(), p)
	assert.ErrorIs(t, err, ErrDuplicatePayment)
}

func TestPaymentStoreCaptureUnknownUser(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("pm-1", now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET fee_status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	p := &models.Payment{UserID: "u-9", OrderID: "order_2", PaymentID: "pay_2", Status: "captured"}
	assert.ErrorIs(t, NewPaymentStore(conn).Capture(context.Background(), p), ErrNotFound)
}
