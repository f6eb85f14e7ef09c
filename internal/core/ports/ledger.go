package ports

//go:generate mockgen -source=ledger.go -destination=mocks/mock_ledger.go -package=mocks

import (
	"context"

	"social-wallet-api/internal/core/domain"
)

// LedgerAdapter is one external ledger behind a uniform contract. Every
// error it returns is an *apperror.AppError of a ledger kind:
// AccountNotFound, InsufficientFunds, InvalidDestination, LedgerRejected
// or LedgerUnavailable.
//
// Implementations hold no per-user state. Signing keys arrive per call.
type LedgerAdapter interface {
	Network() domain.Network
	// ValidateAccountID is a syntax check only; it never calls the ledger.
	ValidateAccountID(accountID string) bool
	CreateAccount(ctx context.Context, policy domain.FundingPolicy) (*domain.ProvisionedAccount, error)
	GetBalance(ctx context.Context, accountID string) ([]domain.Balance, error)
	// Transfer blocks until the ledger acknowledges inclusion. It is not
	// idempotent; callers must not retry it blindly.
	Transfer(ctx context.Context, order domain.TransferOrder) (*domain.TransferReceipt, error)
	// ListTransactions returns at most limit entries, newest first.
	ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.LedgerTransaction, error)
}

// TokenIssuer is implemented by ledgers that can mint fungible tokens.
type TokenIssuer interface {
	IssueToken(ctx context.Context, order domain.TokenIssueOrder) (*domain.IssuedToken, error)
}

// AssetLister is implemented by ledgers with a public asset directory.
type AssetLister interface {
	ListAssets(ctx context.Context, limit int) ([]domain.Asset, error)
}
