package integration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"social-wallet-api/internal/core/domain"
	"social-wallet-api/pkg/apperror"

	"github.com/shopspring/decimal"
)

type fakeAccount struct {
	privateKey string
	balance    decimal.Decimal
	history    []domain.LedgerTransaction // oldest first
}

// fakeLedger is an in-process ledger. It checks signatures and funds the
// way a real network would, so the orchestrator can be driven end to end.
type fakeLedger struct {
	network domain.Network
	prefix  string
	faucet  decimal.Decimal // used when the funding policy is zero

	mu        sync.Mutex
	seq       int
	accounts  map[string]*fakeAccount
	transfers int
	tokens    []domain.IssuedToken
}

func newFakeLedger(network domain.Network, prefix string, faucet decimal.Decimal) *fakeLedger {
	return &fakeLedger{
		network:  network,
		prefix:   prefix,
		faucet:   faucet,
		accounts: make(map[string]*fakeAccount),
	}
}

func (l *fakeLedger) Network() domain.Network { return l.network }

func (l *fakeLedger) ValidateAccountID(accountID string) bool {
	return strings.HasPrefix(accountID, l.prefix) && len(accountID) > len(l.prefix)
}

func (l *fakeLedger) CreateAccount(_ context.Context, policy domain.FundingPolicy) (*domain.ProvisionedAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	id := fmt.Sprintf("%s%d", l.prefix, 1000+l.seq)
	funding := policy.InitialBalance
	if funding.IsZero() {
		funding = l.faucet
	}
	key := fmt.Sprintf("priv-%s", id)
	l.accounts[id] = &fakeAccount{privateKey: key, balance: funding}
	return &domain.ProvisionedAccount{
		AccountID:     id,
		PublicKey:     "pub-" + id,
		PrivateKey:    key,
		CreationTxRef: fmt.Sprintf("create-%d", l.seq),
	}, nil
}

func (l *fakeLedger) GetBalance(_ context.Context, accountID string) ([]domain.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[accountID]
	if !ok {
		return nil, apperror.ErrAccountNotFound()
	}
	return []domain.Balance{{AssetCode: l.network.NativeAsset(), Amount: acct.balance}}, nil
}

func (l *fakeLedger) Transfer(_ context.Context, order domain.TransferOrder) (*domain.TransferReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	from, ok := l.accounts[order.FromAccountID]
	if !ok {
		return nil, apperror.ErrAccountNotFound()
	}
	if from.privateKey != order.PrivateKey {
		return nil, apperror.ErrLedgerRejected("INVALID_SIGNATURE")
	}
	to, ok := l.accounts[order.ToAccountID]
	if !ok {
		return nil, apperror.ErrAccountNotFound()
	}
	if from.balance.LessThan(order.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	l.seq++
	l.transfers++
	ref := fmt.Sprintf("%s@%d", order.FromAccountID, l.seq)
	now := time.Now().UTC()
	from.balance = from.balance.Sub(order.Amount)
	to.balance = to.balance.Add(order.Amount)
	from.history = append(from.history, domain.LedgerTransaction{
		TransactionRef: ref, Timestamp: now, Counterparty: order.ToAccountID,
		AssetCode: l.network.NativeAsset(), Amount: order.Amount, Direction: domain.DirectionOutgoing, Memo: order.Memo,
	})
	to.history = append(to.history, domain.LedgerTransaction{
		TransactionRef: ref, Timestamp: now, Counterparty: order.FromAccountID,
		AssetCode: l.network.NativeAsset(), Amount: order.Amount, Direction: domain.DirectionIncoming, Memo: order.Memo,
	})
	return &domain.TransferReceipt{TransactionRef: ref, Status: "SUCCESS"}, nil
}

func (l *fakeLedger) ListTransactions(_ context.Context, accountID string, limit int) ([]domain.LedgerTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[accountID]
	if !ok {
		return []domain.LedgerTransaction{}, nil
	}
	out := make([]domain.LedgerTransaction, 0, limit)
	for i := len(acct.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, acct.history[i])
	}
	return out, nil
}

func (l *fakeLedger) transferCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfers
}

func (l *fakeLedger) balanceOf(accountID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acct, ok := l.accounts[accountID]; ok {
		return acct.balance
	}
	return decimal.Zero
}

// fakeTokenLedger adds token issuance.
type fakeTokenLedger struct {
	*fakeLedger
}

func (l *fakeTokenLedger) IssueToken(_ context.Context, order domain.TokenIssueOrder) (*domain.IssuedToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[order.TreasuryAccountID]
	if !ok {
		return nil, apperror.ErrAccountNotFound()
	}
	if acct.privateKey != order.PrivateKey {
		return nil, apperror.ErrLedgerRejected("INVALID_SIGNATURE")
	}
	l.seq++
	token := domain.IssuedToken{
		TokenID:        fmt.Sprintf("%s%d", l.prefix, 5000+l.seq),
		Name:           order.Name,
		Symbol:         order.Symbol,
		InitialSupply:  order.InitialSupply,
		TransactionRef: fmt.Sprintf("%s@%d", order.TreasuryAccountID, l.seq),
	}
	l.tokens = append(l.tokens, token)
	return &token, nil
}

// fakeAssetLedger adds an asset directory.
type fakeAssetLedger struct {
	*fakeLedger
	assets []domain.Asset
}

func (l *fakeAssetLedger) ListAssets(_ context.Context, limit int) ([]domain.Asset, error) {
	if limit > len(l.assets) {
		limit = len(l.assets)
	}
	return l.assets[:limit], nil
}
