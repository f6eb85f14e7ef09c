package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingPolicy controls how a new ledger account is funded.
type FundingPolicy struct {
	// InitialBalance is paid from the treasury on ledgers that need it.
	InitialBalance decimal.Decimal
}

// ProvisionedAccount is a freshly created ledger account with its keypair.
// PrivateKey is plaintext and must be sealed before it is stored.
type ProvisionedAccount struct {
	AccountID     string
	PublicKey     string
	PrivateKey    string
	CreationTxRef string
}

// Balance is one asset holding as reported by the ledger.
type Balance struct {
	AssetCode string          `json:"asset_code"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransferOrder carries everything one transfer needs, including the
// sender's signing key. It is never persisted.
type TransferOrder struct {
	FromAccountID string
	PrivateKey    string
	ToAccountID   string
	Amount        decimal.Decimal
	Memo          string
}

// TransferReceipt is the ledger's acknowledgement of an included transfer.
type TransferReceipt struct {
	TransactionRef string `json:"transaction_ref"`
	Status         string `json:"status"`
}

// Direction of a history entry relative to the queried account.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// LedgerTransaction is one normalized history entry.
type LedgerTransaction struct {
	TransactionRef string          `json:"transaction_ref"`
	Timestamp      time.Time       `json:"timestamp"`
	Counterparty   string          `json:"counterparty"`
	AssetCode      string          `json:"asset_code"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      Direction       `json:"direction"`
	Memo           string          `json:"memo,omitempty"`
	Result         string          `json:"result,omitempty"`
}

// TokenIssueOrder describes a fungible token minted to a custodial wallet.
type TokenIssueOrder struct {
	TreasuryAccountID string
	PrivateKey        string
	Name              string
	Symbol            string
	InitialSupply     uint64
	Decimals          uint
}

// IssuedToken is the result of a successful token creation.
type IssuedToken struct {
	TokenID        string `json:"token_id"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	InitialSupply  uint64 `json:"initial_supply"`
	TransactionRef string `json:"transaction_ref"`
}

// Asset is an issued asset listed by the ledger.
type Asset struct {
	Code        string          `json:"code"`
	Issuer      string          `json:"issuer"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	NumAccounts int32           `json:"num_accounts"`
}
