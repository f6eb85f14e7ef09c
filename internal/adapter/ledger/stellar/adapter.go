// Package stellar implements the ledger adapter for the Stellar network.
package stellar

import (
	"context"
	"fmt"
	"time"

	"social-wallet-api/config"
	"social-wallet-api/internal/adapter/ledger"
	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
)

// MaxMemoBytes is the MEMO_TEXT limit.
const MaxMemoBytes = 28

const nativeAssetType = "native"

var (
	_ ports.LedgerAdapter = (*Adapter)(nil)
	_ ports.AssetLister   = (*Adapter)(nil)
)

// Adapter implements ports.LedgerAdapter and ports.AssetLister.
type Adapter struct {
	horizon    Horizon
	faucet     Faucet
	passphrase string
	baseFee    int64
	txTimeout  time.Duration
	limiter    *ledger.RateLimiter
	log        zerolog.Logger
}

// NewAdapter wires the adapter. A nil faucet skips funding of new accounts.
func NewAdapter(horizon Horizon, faucet Faucet, cfg config.StellarConfig, limiter *ledger.RateLimiter, log zerolog.Logger) *Adapter {
	baseFee := cfg.BaseFee
	if baseFee < txnbuild.MinBaseFee {
		baseFee = txnbuild.MinBaseFee
	}
	timeout := cfg.TxTimeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &Adapter{
		horizon:    horizon,
		faucet:     faucet,
		passphrase: cfg.NetworkPassphrase,
		baseFee:    baseFee,
		txTimeout:  timeout,
		limiter:    limiter,
		log:        log.With().Str("network", string(domain.NetworkStellar)).Logger(),
	}
}

func (a *Adapter) Network() domain.Network {
	return domain.NetworkStellar
}

func (a *Adapter) ValidateAccountID(accountID string) bool {
	return strkey.IsValidEd25519PublicKey(accountID)
}

// CreateAccount generates a keypair and waits for the faucet to fund it.
// Funding failures are logged and do not fail the call; the account then
// exists only once someone pays into it. The funding policy does not apply
// because friendbot pays a fixed amount.
func (a *Adapter) CreateAccount(ctx context.Context, _ domain.FundingPolicy) (*domain.ProvisionedAccount, error) {
	kp, err := keypair.Random()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generating stellar keypair: %w", err))
	}

	var creationRef string
	if a.faucet != nil {
		creationRef = a.fund(ctx, kp.Address())
	}

	return &domain.ProvisionedAccount{
		AccountID:     kp.Address(),
		PublicKey:     kp.Address(),
		PrivateKey:    kp.Seed(),
		CreationTxRef: creationRef,
	}, nil
}

func (a *Adapter) fund(ctx context.Context, address string) string {
	if err := a.limiter.Wait(ctx, ledger.EndpointFaucet); err != nil {
		a.log.Warn().Err(err).Str("account_id", address).Msg("Friendbot funding skipped")
		return ""
	}
	hash, err := a.faucet.Fund(ctx, address)
	if err != nil {
		a.log.Warn().Err(err).Str("account_id", address).Msg("Friendbot funding failed")
		return ""
	}
	a.log.Info().Str("account_id", address).Str("tx_ref", hash).Msg("Stellar account funded")
	return hash
}

// GetBalance reports balances in ledger order with native shown as XLM.
func (a *Adapter) GetBalance(ctx context.Context, accountID string) ([]domain.Balance, error) {
	if !a.ValidateAccountID(accountID) {
		return nil, apperror.ErrAccountNotFound()
	}
	if err := a.limiter.Wait(ctx, ledger.EndpointQuery); err != nil {
		return nil, err
	}

	account, err := a.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		return nil, mapQueryError(err)
	}

	balances := make([]domain.Balance, 0, len(account.Balances))
	for _, b := range account.Balances {
		amount, err := decimal.NewFromString(b.Balance)
		if err != nil {
			return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("parsing balance %q: %w", b.Balance, err))
		}
		balances = append(balances, domain.Balance{
			AssetCode: assetCode(b.Asset.Type, b.Asset.Code),
			Amount:    amount,
		})
	}
	return balances, nil
}

// Transfer pays native XLM, signing with the seed carried in the order.
func (a *Adapter) Transfer(ctx context.Context, order domain.TransferOrder) (*domain.TransferReceipt, error) {
	if _, err := ledger.ToMinorUnits(order.Amount, domain.NetworkStellar.Precision()); err != nil {
		return nil, err
	}
	if len(order.Memo) > MaxMemoBytes {
		return nil, apperror.Validation(fmt.Sprintf("memo must be at most %d bytes", MaxMemoBytes))
	}
	if !a.ValidateAccountID(order.ToAccountID) {
		return nil, apperror.ErrInvalidDestination("Destination is not a valid stellar address")
	}
	kp, err := keypair.ParseFull(order.PrivateKey)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("parsing sender seed: %w", err))
	}
	if kp.Address() != order.FromAccountID {
		return nil, apperror.InternalError(fmt.Errorf("sender seed does not match account %s", order.FromAccountID))
	}

	if err := a.limiter.Wait(ctx, ledger.EndpointSubmit); err != nil {
		return nil, err
	}

	source, err := a.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: order.FromAccountID})
	if err != nil {
		if isNotFound(err) {
			// unfunded accounts do not exist on the ledger yet
			return nil, apperror.ErrInsufficientFunds()
		}
		return nil, apperror.ErrLedgerUnavailable(err)
	}

	var memo txnbuild.Memo
	if order.Memo != "" {
		memo = txnbuild.MemoText(order.Memo)
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{&txnbuild.Payment{
			Destination: order.ToAccountID,
			Amount:      order.Amount.StringFixed(domain.NetworkStellar.Precision()),
			Asset:       txnbuild.NativeAsset{},
		}},
		BaseFee: a.baseFee,
		Memo:    memo,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(int64(a.txTimeout.Seconds())),
		},
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("building stellar payment: %w", err))
	}
	tx, err = tx.Sign(a.passphrase, kp)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("signing stellar payment: %w", err))
	}

	resp, err := a.horizon.SubmitTransaction(tx)
	if err != nil {
		mapped := mapSubmitError(err)
		a.log.Warn().
			Err(err).
			Str("from", order.FromAccountID).
			Str("to", order.ToAccountID).
			Str("code", mapped.Code).
			Str("ledger_status", mapped.LedgerStatus).
			Msg("Stellar payment failed")
		return nil, mapped
	}

	return &domain.TransferReceipt{TransactionRef: resp.Hash, Status: "SUCCESS"}, nil
}

// ListTransactions returns payment and account-creation operations, newest
// first. An account that does not exist yet has no history.
func (a *Adapter) ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.LedgerTransaction, error) {
	if !a.ValidateAccountID(accountID) {
		return nil, apperror.ErrAccountNotFound()
	}
	if err := a.limiter.Wait(ctx, ledger.EndpointHistory); err != nil {
		return nil, err
	}

	page, err := a.horizon.Payments(horizonclient.OperationRequest{
		ForAccount:    accountID,
		Order:         horizonclient.OrderDesc,
		Limit:         uint(limit),
		IncludeFailed: true,
		Join:          "transactions",
	})
	if err != nil {
		if isNotFound(err) {
			return []domain.LedgerTransaction{}, nil
		}
		return nil, apperror.ErrLedgerUnavailable(err)
	}

	out := make([]domain.LedgerTransaction, 0, len(page.Embedded.Records))
	for _, record := range page.Embedded.Records {
		entry, ok := normalizeOperation(record, accountID)
		if !ok {
			continue
		}
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListAssets returns issued assets from the Horizon directory.
func (a *Adapter) ListAssets(ctx context.Context, limit int) ([]domain.Asset, error) {
	if err := a.limiter.Wait(ctx, ledger.EndpointQuery); err != nil {
		return nil, err
	}

	page, err := a.horizon.Assets(horizonclient.AssetRequest{Limit: uint(limit)})
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(err)
	}

	assets := make([]domain.Asset, 0, len(page.Embedded.Records))
	for _, stat := range page.Embedded.Records {
		amount, err := decimal.NewFromString(stat.Balances.Authorized)
		if err != nil {
			amount = decimal.Zero
		}
		assets = append(assets, domain.Asset{
			Code:        stat.Asset.Code,
			Issuer:      stat.Asset.Issuer,
			Type:        stat.Asset.Type,
			Amount:      amount,
			NumAccounts: stat.Accounts.Authorized,
		})
	}
	return assets, nil
}

func normalizeOperation(record operations.Operation, accountID string) (domain.LedgerTransaction, bool) {
	switch op := record.(type) {
	case operations.Payment:
		return fromPayment(op, accountID)
	case *operations.Payment:
		return fromPayment(*op, accountID)
	case operations.CreateAccount:
		return fromCreateAccount(op, accountID)
	case *operations.CreateAccount:
		return fromCreateAccount(*op, accountID)
	}
	return domain.LedgerTransaction{}, false
}

func fromPayment(op operations.Payment, accountID string) (domain.LedgerTransaction, bool) {
	amount, err := decimal.NewFromString(op.Amount)
	if err != nil {
		return domain.LedgerTransaction{}, false
	}
	entry := baseEntry(op.Base)
	entry.AssetCode = assetCode(op.Asset.Type, op.Asset.Code)
	entry.Amount = amount
	if op.To == accountID {
		entry.Direction = domain.DirectionIncoming
		entry.Counterparty = op.From
	} else {
		entry.Direction = domain.DirectionOutgoing
		entry.Counterparty = op.To
	}
	return entry, true
}

func fromCreateAccount(op operations.CreateAccount, accountID string) (domain.LedgerTransaction, bool) {
	amount, err := decimal.NewFromString(op.StartingBalance)
	if err != nil {
		return domain.LedgerTransaction{}, false
	}
	entry := baseEntry(op.Base)
	entry.AssetCode = domain.NetworkStellar.NativeAsset()
	entry.Amount = amount
	if op.Account == accountID {
		entry.Direction = domain.DirectionIncoming
		entry.Counterparty = op.Funder
	} else {
		entry.Direction = domain.DirectionOutgoing
		entry.Counterparty = op.Account
	}
	return entry, true
}

func baseEntry(b operations.Base) domain.LedgerTransaction {
	result := "SUCCESS"
	if !b.TransactionSuccessful {
		result = "FAILED"
	}
	entry := domain.LedgerTransaction{
		TransactionRef: b.TransactionHash,
		Timestamp:      b.LedgerCloseTime.UTC(),
		Result:         result,
	}
	if b.Transaction != nil && b.Transaction.MemoType == "text" {
		entry.Memo = b.Transaction.Memo
	}
	return entry
}

func assetCode(assetType, code string) string {
	if assetType == nativeAssetType {
		return domain.NetworkStellar.NativeAsset()
	}
	return code
}
