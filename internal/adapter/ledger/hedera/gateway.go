package hedera

import (
	"errors"
	"fmt"

	"social-wallet-api/config"

	sdk "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Gateway is the part of the Hedera SDK the adapter needs. Implementations
// return raw SDK errors; the adapter maps them.
type Gateway interface {
	CreateAccount(key sdk.PublicKey, initialBalance sdk.Hbar) (sdk.AccountID, sdk.TransactionID, error)
	Balance(accountID sdk.AccountID) (sdk.Hbar, error)
	Transfer(from, to sdk.AccountID, amount sdk.Hbar, memo string, key sdk.PrivateKey) (sdk.TransactionID, error)
	CreateToken(spec TokenSpec, key sdk.PrivateKey) (sdk.TokenID, sdk.TransactionID, error)
}

// TokenSpec describes a fungible token whose treasury is also its admin.
type TokenSpec struct {
	Treasury      sdk.AccountID
	Name          string
	Symbol        string
	Decimals      uint
	InitialSupply uint64
}

var errMissingReceiptID = errors.New("receipt carries no entity id")

// tokenCreateFee caps the fee for token creation, which costs far more than
// a transfer.
var tokenCreateFee = sdk.NewHbar(40)

// SDKGateway executes transactions through a shared *sdk.Client. The
// client's operator is the treasury and is only ever used to pay for
// account creation; transfers are paid and signed by the sender.
type SDKGateway struct {
	client *sdk.Client
	maxFee sdk.Hbar
}

// NewClient builds the process-wide SDK client with the treasury operator.
func NewClient(cfg config.HederaConfig, log zerolog.Logger) (*sdk.Client, error) {
	client, err := sdk.ClientForName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("hedera client for %q: %w", cfg.Network, err)
	}
	if err := configureClient(client, cfg); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info().
		Str("network", cfg.Network).
		Str("operator", client.GetOperatorAccountID().String()).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("Hedera client initialized")

	return client, nil
}

// configureClient sets the operator and bounds every execute and receipt
// wait by cfg.RequestTimeout.
func configureClient(client *sdk.Client, cfg config.HederaConfig) error {
	operatorID, err := sdk.AccountIDFromString(cfg.OperatorID)
	if err != nil {
		return fmt.Errorf("parsing hedera operator id: %w", err)
	}
	operatorKey, err := sdk.PrivateKeyFromString(cfg.OperatorKey)
	if err != nil {
		return fmt.Errorf("parsing hedera operator key: %w", err)
	}
	client.SetOperator(operatorID, operatorKey)
	if cfg.RequestTimeout > 0 {
		timeout := cfg.RequestTimeout
		client.SetRequestTimeout(&timeout)
	}
	return nil
}

func NewSDKGateway(client *sdk.Client, maxFee decimal.Decimal) *SDKGateway {
	return &SDKGateway{
		client: client,
		maxFee: sdk.HbarFromTinybar(maxFee.Shift(8).IntPart()),
	}
}

func (g *SDKGateway) CreateAccount(key sdk.PublicKey, initialBalance sdk.Hbar) (sdk.AccountID, sdk.TransactionID, error) {
	resp, err := sdk.NewAccountCreateTransaction().
		SetKey(key).
		SetInitialBalance(initialBalance).
		Execute(g.client)
	if err != nil {
		return sdk.AccountID{}, sdk.TransactionID{}, err
	}

	receipt, err := resp.GetReceipt(g.client)
	if err != nil {
		return sdk.AccountID{}, resp.TransactionID, err
	}
	if receipt.AccountID == nil {
		return sdk.AccountID{}, resp.TransactionID, errMissingReceiptID
	}
	return *receipt.AccountID, resp.TransactionID, nil
}

func (g *SDKGateway) Balance(accountID sdk.AccountID) (sdk.Hbar, error) {
	balance, err := sdk.NewAccountBalanceQuery().
		SetAccountID(accountID).
		Execute(g.client)
	if err != nil {
		return sdk.Hbar{}, err
	}
	return balance.Hbars, nil
}

// Transfer freezes the transaction with a sender-generated id so the sender
// pays the fee, signs it with the sender key and waits for the receipt.
func (g *SDKGateway) Transfer(from, to sdk.AccountID, amount sdk.Hbar, memo string, key sdk.PrivateKey) (sdk.TransactionID, error) {
	tx, err := sdk.NewTransferTransaction().
		AddHbarTransfer(from, amount.Negated()).
		AddHbarTransfer(to, amount).
		SetTransactionMemo(memo).
		SetTransactionID(sdk.TransactionIDGenerate(from)).
		SetMaxTransactionFee(g.maxFee).
		FreezeWith(g.client)
	if err != nil {
		return sdk.TransactionID{}, err
	}

	resp, err := tx.Sign(key).Execute(g.client)
	if err != nil {
		return sdk.TransactionID{}, err
	}
	if _, err := resp.GetReceipt(g.client); err != nil {
		return resp.TransactionID, err
	}
	return resp.TransactionID, nil
}

func (g *SDKGateway) CreateToken(spec TokenSpec, key sdk.PrivateKey) (sdk.TokenID, sdk.TransactionID, error) {
	tx, err := sdk.NewTokenCreateTransaction().
		SetTokenName(spec.Name).
		SetTokenSymbol(spec.Symbol).
		SetDecimals(spec.Decimals).
		SetInitialSupply(spec.InitialSupply).
		SetTreasuryAccountID(spec.Treasury).
		SetAdminKey(key.PublicKey()).
		SetSupplyKey(key.PublicKey()).
		SetTransactionID(sdk.TransactionIDGenerate(spec.Treasury)).
		SetMaxTransactionFee(tokenCreateFee).
		FreezeWith(g.client)
	if err != nil {
		return sdk.TokenID{}, sdk.TransactionID{}, err
	}

	resp, err := tx.Sign(key).Execute(g.client)
	if err != nil {
		return sdk.TokenID{}, sdk.TransactionID{}, err
	}
	receipt, err := resp.GetReceipt(g.client)
	if err != nil {
		return sdk.TokenID{}, resp.TransactionID, err
	}
	if receipt.TokenID == nil {
		return sdk.TokenID{}, resp.TransactionID, errMissingReceiptID
	}
	return *receipt.TokenID, resp.TransactionID, nil
}
