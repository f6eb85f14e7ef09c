package postgres

import (
	"context"
	"errors"
	"fmt"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a PENDING journal row. A reused idempotency key for the
// same user surfaces as domain.ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (id, user_id, network, from_account, to_account, amount, memo,
		idempotency_key, status, transaction_ref, failure_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.Network, p.FromAccount, p.ToAccount, p.Amount.String(), p.Memo,
		p.IdempotencyKey, p.Status, p.TransactionRef, p.FailureCode, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert payment: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches the journal row created with a client key.
func (r *PaymentRepo) GetByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*domain.Payment, error) {
	query := `SELECT id, user_id, network, from_account, to_account, amount::text, memo,
		idempotency_key, status, transaction_ref, failure_code, created_at, updated_at
		FROM payments WHERE user_id = $1 AND idempotency_key = $2`

	p := &domain.Payment{}
	var amount string
	err := r.pool.QueryRow(ctx, query, userID, key).Scan(
		&p.ID, &p.UserID, &p.Network, &p.FromAccount, &p.ToAccount, &amount, &p.Memo,
		&p.IdempotencyKey, &p.Status, &p.TransactionRef, &p.FailureCode, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by idempotency key: %w", err)
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse payment amount %q: %w", amount, err)
	}
	return p, nil
}

// MarkCompleted moves a PENDING row to COMPLETED with the ledger reference.
func (r *PaymentRepo) MarkCompleted(ctx context.Context, id uuid.UUID, txRef string) error {
	return r.finish(ctx, id, domain.PaymentStatusCompleted, &txRef, nil)
}

// MarkFailed moves a PENDING row to FAILED with the error code.
func (r *PaymentRepo) MarkFailed(ctx context.Context, id uuid.UUID, failureCode string) error {
	return r.finish(ctx, id, domain.PaymentStatusFailed, nil, &failureCode)
}

func (r *PaymentRepo) finish(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, txRef, failureCode *string) error {
	query := `UPDATE payments SET status = $1, transaction_ref = $2, failure_code = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'PENDING'`

	tag, err := r.pool.Exec(ctx, query, status, txRef, failureCode, id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending payment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
