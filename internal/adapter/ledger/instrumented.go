package ledger

import (
	"context"
	"time"

	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"
)

// Recorder receives one observation per ledger call.
type Recorder interface {
	ObserveLedgerCall(network, operation string, err error, elapsed time.Duration)
}

// Instrumented decorates a LedgerAdapter with call metrics. It always
// exposes IssueToken and ListAssets; when the wrapped adapter lacks the
// capability they return UnsupportedOperation without touching the ledger.
type Instrumented struct {
	inner    ports.LedgerAdapter
	recorder Recorder
}

var (
	_ ports.LedgerAdapter = (*Instrumented)(nil)
	_ ports.TokenIssuer   = (*Instrumented)(nil)
	_ ports.AssetLister   = (*Instrumented)(nil)
)

func Instrument(inner ports.LedgerAdapter, recorder Recorder) *Instrumented {
	return &Instrumented{inner: inner, recorder: recorder}
}

// Unwrap returns the decorated adapter.
func (i *Instrumented) Unwrap() ports.LedgerAdapter {
	return i.inner
}

func (i *Instrumented) Network() domain.Network {
	return i.inner.Network()
}

func (i *Instrumented) ValidateAccountID(accountID string) bool {
	return i.inner.ValidateAccountID(accountID)
}

func (i *Instrumented) CreateAccount(ctx context.Context, policy domain.FundingPolicy) (*domain.ProvisionedAccount, error) {
	start := time.Now()
	acct, err := i.inner.CreateAccount(ctx, policy)
	i.observe("create_account", start, err)
	return acct, err
}

func (i *Instrumented) GetBalance(ctx context.Context, accountID string) ([]domain.Balance, error) {
	start := time.Now()
	balances, err := i.inner.GetBalance(ctx, accountID)
	i.observe("get_balance", start, err)
	return balances, err
}

func (i *Instrumented) Transfer(ctx context.Context, order domain.TransferOrder) (*domain.TransferReceipt, error) {
	start := time.Now()
	receipt, err := i.inner.Transfer(ctx, order)
	i.observe("transfer", start, err)
	return receipt, err
}

func (i *Instrumented) ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.LedgerTransaction, error) {
	start := time.Now()
	txs, err := i.inner.ListTransactions(ctx, accountID, limit)
	i.observe("list_transactions", start, err)
	return txs, err
}

func (i *Instrumented) IssueToken(ctx context.Context, order domain.TokenIssueOrder) (*domain.IssuedToken, error) {
	issuer, ok := i.inner.(ports.TokenIssuer)
	if !ok {
		return nil, apperror.ErrUnsupportedOperation("token issuance", i.inner.Network().String())
	}
	start := time.Now()
	token, err := issuer.IssueToken(ctx, order)
	i.observe("issue_token", start, err)
	return token, err
}

func (i *Instrumented) ListAssets(ctx context.Context, limit int) ([]domain.Asset, error) {
	lister, ok := i.inner.(ports.AssetLister)
	if !ok {
		return nil, apperror.ErrUnsupportedOperation("asset listing", i.inner.Network().String())
	}
	start := time.Now()
	assets, err := lister.ListAssets(ctx, limit)
	i.observe("list_assets", start, err)
	return assets, err
}

func (i *Instrumented) observe(operation string, start time.Time, err error) {
	if i.recorder == nil {
		return
	}
	i.recorder.ObserveLedgerCall(i.inner.Network().String(), operation, err, time.Since(start))
}
