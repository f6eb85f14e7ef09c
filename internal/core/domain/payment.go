package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the local journal state of an outgoing payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is a journal entry for one sendPayment call. The ledger stays the
// source of truth; a PENDING row whose ledger outcome is unknown is left
// PENDING until reconciled.
type Payment struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Network        Network         `json:"network"`
	FromAccount    string          `json:"from_account"`
	ToAccount      string          `json:"to_account"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo,omitempty"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	Status         PaymentStatus   `json:"status"`
	TransactionRef *string         `json:"transaction_ref,omitempty"`
	FailureCode    *string         `json:"failure_code,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsTerminal returns true if the payment reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}

// PaymentReceipt is what sendPayment returns to the caller.
type PaymentReceipt struct {
	PaymentID      uuid.UUID       `json:"payment_id"`
	Network        Network         `json:"network"`
	TransactionRef string          `json:"transaction_ref"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo,omitempty"`
}

// BuildPaymentIdempotencyKey scopes a client idempotency key to a sender and network.
func BuildPaymentIdempotencyKey(userID uuid.UUID, network Network, key string) string {
	return userID.String() + ":" + string(network) + ":" + key
}
