package postgres

import (
	"context"
	"testing"
	"time"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment() *domain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Payment{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Network:        domain.NetworkStellar,
		FromAccount:    "GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ",
		ToAccount:      "GCFXHS4GXL6BVUCXBWXGTITROWLVYXQKQLF4YH5O5JT3YZXCYPAFBJZB",
		Amount:         decimal.RequireFromString("12.5"),
		Memo:           "lunch",
		IdempotencyKey: strPtr("order-42"),
		Status:         domain.PaymentStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestPaymentRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment()

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(p.ID, p.UserID, p.Network, p.FromAccount, p.ToAccount, "12.5", p.Memo,
			p.IdempotencyKey, p.Status, p.TransactionRef, p.FailureCode, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_Create_DuplicateKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment()

	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "payments_user_idempotency_key"})

	err = repo.Create(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestPaymentRepo_GetByIdempotencyKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment()
	p.Status = domain.PaymentStatusCompleted
	p.TransactionRef = strPtr("b9d0b2292c4e09e8eb22d036171491e87b8d2086bf8b265874c8d182cb9c9020")

	rows := pgxmock.NewRows([]string{"id", "user_id", "network", "from_account", "to_account", "amount", "memo",
		"idempotency_key", "status", "transaction_ref", "failure_code", "created_at", "updated_at"}).
		AddRow(p.ID, p.UserID, p.Network, p.FromAccount, p.ToAccount, "12.50000000", p.Memo,
			p.IdempotencyKey, p.Status, p.TransactionRef, p.FailureCode, p.CreatedAt, p.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM payments WHERE user_id").
		WithArgs(p.UserID, "order-42").
		WillReturnRows(rows)

	result, err := repo.GetByIdempotencyKey(context.Background(), p.UserID, "order-42")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, domain.PaymentStatusCompleted, result.Status)
	assert.Equal(t, *p.TransactionRef, *result.TransactionRef)
}

func TestPaymentRepo_GetByIdempotencyKey_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM payments WHERE user_id").
		WithArgs(userID, "nope").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByIdempotencyKey(context.Background(), userID, "nope")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestPaymentRepo_MarkCompleted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()
	ref := "0.0.1001@1700000000.000000001"

	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentStatusCompleted, &ref, (*string)(nil), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkCompleted(context.Background(), id, ref)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_MarkFailed_NotPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentStatusFailed, pgxmock.AnyArg(), pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.MarkFailed(context.Background(), id, "PAY_001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
