// Package hedera implements the ledger adapter for the Hedera network.
package hedera

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"social-wallet-api/internal/adapter/ledger"
	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"

	sdk "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
)

// maxMemoBytes is the network limit for a transaction memo.
const maxMemoBytes = 100

var accountIDPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

var (
	_ ports.LedgerAdapter = (*Adapter)(nil)
	_ ports.TokenIssuer   = (*Adapter)(nil)
)

// Adapter implements ports.LedgerAdapter and ports.TokenIssuer.
type Adapter struct {
	gateway Gateway
	mirror  *MirrorClient
	limiter *ledger.RateLimiter
	log     zerolog.Logger
}

func NewAdapter(gateway Gateway, mirror *MirrorClient, limiter *ledger.RateLimiter, log zerolog.Logger) *Adapter {
	return &Adapter{
		gateway: gateway,
		mirror:  mirror,
		limiter: limiter,
		log:     log.With().Str("network", string(domain.NetworkHedera)).Logger(),
	}
}

func (a *Adapter) Network() domain.Network {
	return domain.NetworkHedera
}

// ValidateAccountID accepts shard.realm.num without a checksum suffix.
func (a *Adapter) ValidateAccountID(accountID string) bool {
	return accountIDPattern.MatchString(accountID)
}

// CreateAccount generates an ECDSA key locally and creates an account funded
// by the treasury operator.
func (a *Adapter) CreateAccount(ctx context.Context, policy domain.FundingPolicy) (*domain.ProvisionedAccount, error) {
	var initial sdk.Hbar
	if !policy.InitialBalance.IsZero() {
		tinybars, err := ledger.ToMinorUnits(policy.InitialBalance, domain.NetworkHedera.Precision())
		if err != nil {
			return nil, err
		}
		initial = sdk.HbarFromTinybar(tinybars)
	}

	key, err := sdk.PrivateKeyGenerateEcdsa()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generating hedera key: %w", err))
	}

	if err := a.limiter.Wait(ctx, ledger.EndpointSubmit); err != nil {
		return nil, err
	}

	accountID, txID, err := a.gateway.CreateAccount(key.PublicKey(), initial)
	if err != nil {
		return nil, mapError(err)
	}

	a.log.Info().
		Str("account_id", accountID.String()).
		Str("tx_ref", txID.String()).
		Msg("Hedera account created")

	return &domain.ProvisionedAccount{
		AccountID:     accountID.String(),
		PublicKey:     key.PublicKey().String(),
		PrivateKey:    key.String(),
		CreationTxRef: txID.String(),
	}, nil
}

func (a *Adapter) GetBalance(ctx context.Context, accountID string) ([]domain.Balance, error) {
	id, err := parseAccountID(accountID)
	if err != nil {
		return nil, apperror.ErrAccountNotFound()
	}
	if err := a.limiter.Wait(ctx, ledger.EndpointQuery); err != nil {
		return nil, err
	}

	hbars, err := a.gateway.Balance(id)
	if err != nil {
		return nil, mapQueryError(err)
	}
	return []domain.Balance{{
		AssetCode: domain.NetworkHedera.NativeAsset(),
		Amount:    ledger.FromMinorUnits(hbars.AsTinybar(), domain.NetworkHedera.Precision()),
	}}, nil
}

// Transfer moves HBAR from the sender, who pays the fee and signs with the
// key carried in the order.
func (a *Adapter) Transfer(ctx context.Context, order domain.TransferOrder) (*domain.TransferReceipt, error) {
	tinybars, err := ledger.ToMinorUnits(order.Amount, domain.NetworkHedera.Precision())
	if err != nil {
		return nil, err
	}
	if len(order.Memo) > maxMemoBytes || !utf8.ValidString(order.Memo) {
		return nil, apperror.Validation(fmt.Sprintf("memo must be valid UTF-8 of at most %d bytes", maxMemoBytes))
	}
	from, err := parseAccountID(order.FromAccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("stored sender account id: %w", err))
	}
	to, err := parseAccountID(order.ToAccountID)
	if err != nil {
		return nil, apperror.ErrInvalidDestination("Destination is not a valid hedera account id")
	}
	key, err := sdk.PrivateKeyFromString(order.PrivateKey)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("parsing sender key: %w", err))
	}

	if err := a.limiter.Wait(ctx, ledger.EndpointSubmit); err != nil {
		return nil, err
	}

	txID, err := a.gateway.Transfer(from, to, sdk.HbarFromTinybar(tinybars), order.Memo, key)
	if err != nil {
		mapped := mapError(err)
		a.log.Warn().
			Err(err).
			Str("from", order.FromAccountID).
			Str("to", order.ToAccountID).
			Str("code", mapped.Code).
			Msg("Hedera transfer failed")
		return nil, mapped
	}

	return &domain.TransferReceipt{
		TransactionRef: txID.String(),
		Status:         sdk.StatusSuccess.String(),
	}, nil
}

func (a *Adapter) ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.LedgerTransaction, error) {
	if !a.ValidateAccountID(accountID) {
		return nil, apperror.ErrAccountNotFound()
	}
	if err := a.limiter.Wait(ctx, ledger.EndpointHistory); err != nil {
		return nil, err
	}
	return a.mirror.Transactions(ctx, accountID, limit)
}

// IssueToken creates a fungible token with the wallet as treasury, admin
// and supply key holder.
func (a *Adapter) IssueToken(ctx context.Context, order domain.TokenIssueOrder) (*domain.IssuedToken, error) {
	name := strings.TrimSpace(order.Name)
	symbol := strings.TrimSpace(order.Symbol)
	if name == "" || symbol == "" {
		return nil, apperror.Validation("token name and symbol are required")
	}
	treasury, err := parseAccountID(order.TreasuryAccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("stored treasury account id: %w", err))
	}
	key, err := sdk.PrivateKeyFromString(order.PrivateKey)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("parsing treasury key: %w", err))
	}

	if err := a.limiter.Wait(ctx, ledger.EndpointSubmit); err != nil {
		return nil, err
	}

	tokenID, txID, err := a.gateway.CreateToken(TokenSpec{
		Treasury:      treasury,
		Name:          name,
		Symbol:        symbol,
		Decimals:      order.Decimals,
		InitialSupply: order.InitialSupply,
	}, key)
	if err != nil {
		return nil, mapError(err)
	}

	return &domain.IssuedToken{
		TokenID:        tokenID.String(),
		Name:           name,
		Symbol:         symbol,
		InitialSupply:  order.InitialSupply,
		TransactionRef: txID.String(),
	}, nil
}

func parseAccountID(id string) (sdk.AccountID, error) {
	if !accountIDPattern.MatchString(id) {
		return sdk.AccountID{}, fmt.Errorf("malformed account id %q", id)
	}
	return sdk.AccountIDFromString(id)
}
