package hedera

import (
	"context"
	"errors"
	"testing"

	"social-wallet-api/internal/adapter/ledger"
	"social-wallet-api/internal/core/domain"
	"social-wallet-api/pkg/apperror"

	sdk "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transferCall struct {
	from, to sdk.AccountID
	amount   sdk.Hbar
	memo     string
	signer   string
}

type fakeGateway struct {
	createdKey  sdk.PublicKey
	createdFund sdk.Hbar
	accountID   sdk.AccountID
	balance     sdk.Hbar
	transfers   []transferCall
	tokenSpec   TokenSpec
	err         error
}

func (f *fakeGateway) CreateAccount(key sdk.PublicKey, initial sdk.Hbar) (sdk.AccountID, sdk.TransactionID, error) {
	f.createdKey, f.createdFund = key, initial
	if f.err != nil {
		return sdk.AccountID{}, sdk.TransactionID{}, f.err
	}
	return f.accountID, sdk.TransactionIDGenerate(mustAccount("0.0.2")), nil
}

func (f *fakeGateway) Balance(sdk.AccountID) (sdk.Hbar, error) {
	return f.balance, f.err
}

func (f *fakeGateway) Transfer(from, to sdk.AccountID, amount sdk.Hbar, memo string, key sdk.PrivateKey) (sdk.TransactionID, error) {
	f.transfers = append(f.transfers, transferCall{from, to, amount, memo, key.PublicKey().String()})
	if f.err != nil {
		return sdk.TransactionID{}, f.err
	}
	return sdk.TransactionIDGenerate(from), nil
}

func (f *fakeGateway) CreateToken(spec TokenSpec, _ sdk.PrivateKey) (sdk.TokenID, sdk.TransactionID, error) {
	f.tokenSpec = spec
	if f.err != nil {
		return sdk.TokenID{}, sdk.TransactionID{}, f.err
	}
	return sdk.TokenID{Shard: 0, Realm: 0, Token: 7777}, sdk.TransactionIDGenerate(spec.Treasury), nil
}

func mustAccount(id string) sdk.AccountID {
	acct, err := sdk.AccountIDFromString(id)
	if err != nil {
		panic(err)
	}
	return acct
}

func newTestAdapter(gw Gateway) *Adapter {
	return NewAdapter(gw, NewMirrorClient("http://127.0.0.1:0", 0), ledger.NewRateLimiter(0, 1), zerolog.Nop())
}

func newSenderKey(t *testing.T) sdk.PrivateKey {
	t.Helper()
	key, err := sdk.PrivateKeyGenerateEcdsa()
	require.NoError(t, err)
	return key
}

func TestAdapter_ValidateAccountID(t *testing.T) {
	a := newTestAdapter(&fakeGateway{})
	assert.Equal(t, domain.NetworkHedera, a.Network())

	for _, id := range []string{"0.0.12345", "0.0.1", "1.2.3"} {
		assert.True(t, a.ValidateAccountID(id), id)
	}
	for _, id := range []string{"", "0.0", "0.0.x", "0.0.123-abcde", "GABC", " 0.0.1"} {
		assert.False(t, a.ValidateAccountID(id), id)
	}
}

func TestAdapter_CreateAccount(t *testing.T) {
	gw := &fakeGateway{accountID: mustAccount("0.0.4242")}
	a := newTestAdapter(gw)

	acct, err := a.CreateAccount(context.Background(), domain.FundingPolicy{InitialBalance: decimal.NewFromInt(10)})
	require.NoError(t, err)

	assert.Equal(t, "0.0.4242", acct.AccountID)
	assert.Equal(t, int64(1_000_000_000), gw.createdFund.AsTinybar())
	assert.Equal(t, gw.createdKey.String(), acct.PublicKey)
	assert.Contains(t, acct.CreationTxRef, "0.0.2@")

	key, err := sdk.PrivateKeyFromString(acct.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, acct.PublicKey, key.PublicKey().String())
}

func TestAdapter_CreateAccount_ReceiptFailure(t *testing.T) {
	gw := &fakeGateway{err: sdk.ErrHederaReceiptStatus{Status: sdk.StatusInvalidSignature}}
	a := newTestAdapter(gw)

	_, err := a.CreateAccount(context.Background(), domain.FundingPolicy{})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeLedgerRejected, appErr.Code)
	assert.Equal(t, "INVALID_SIGNATURE", appErr.LedgerStatus)
}

func TestAdapter_GetBalance(t *testing.T) {
	gw := &fakeGateway{balance: sdk.HbarFromTinybar(1_250_000_000)}
	a := newTestAdapter(gw)

	balances, err := a.GetBalance(context.Background(), "0.0.4242")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "HBAR", balances[0].AssetCode)
	assert.True(t, decimal.RequireFromString("12.5").Equal(balances[0].Amount))
}

func TestAdapter_GetBalance_UnknownAccount(t *testing.T) {
	gw := &fakeGateway{err: sdk.ErrHederaPreCheckStatus{Status: sdk.StatusInvalidAccountID}}
	a := newTestAdapter(gw)

	_, err := a.GetBalance(context.Background(), "0.0.999999")
	assert.True(t, apperror.HasCode(err, apperror.CodeAccountNotFound))

	_, err = a.GetBalance(context.Background(), "not-an-id")
	assert.True(t, apperror.HasCode(err, apperror.CodeAccountNotFound))
}

func TestAdapter_Transfer_SignsWithSenderKey(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAdapter(gw)
	key := newSenderKey(t)

	receipt, err := a.Transfer(context.Background(), domain.TransferOrder{
		FromAccountID: "0.0.1001",
		PrivateKey:    key.String(),
		ToAccountID:   "0.0.2002",
		Amount:        decimal.NewFromInt(10),
		Memo:          "lunch",
	})
	require.NoError(t, err)
	assert.Contains(t, receipt.TransactionRef, "0.0.1001@")
	assert.Equal(t, "SUCCESS", receipt.Status)

	require.Len(t, gw.transfers, 1)
	call := gw.transfers[0]
	assert.Equal(t, "0.0.1001", call.from.String())
	assert.Equal(t, "0.0.2002", call.to.String())
	assert.Equal(t, int64(1_000_000_000), call.amount.AsTinybar())
	assert.Equal(t, "lunch", call.memo)
	assert.Equal(t, key.PublicKey().String(), call.signer)
}

func TestAdapter_Transfer_RejectsBeforeSubmitting(t *testing.T) {
	key := newSenderKey(t).String()
	tests := []struct {
		name  string
		order domain.TransferOrder
		code  string
	}{
		{"zero amount", domain.TransferOrder{FromAccountID: "0.0.1", ToAccountID: "0.0.2", PrivateKey: key, Amount: decimal.Zero}, apperror.CodeInvalidAmount},
		{"too precise", domain.TransferOrder{FromAccountID: "0.0.1", ToAccountID: "0.0.2", PrivateKey: key, Amount: decimal.RequireFromString("0.000000001")}, apperror.CodeInvalidAmount},
		{"bad destination", domain.TransferOrder{FromAccountID: "0.0.1", ToAccountID: "GABC", PrivateKey: key, Amount: decimal.NewFromInt(1)}, apperror.CodeInvalidDestination},
		{"long memo", domain.TransferOrder{FromAccountID: "0.0.1", ToAccountID: "0.0.2", PrivateKey: key, Amount: decimal.NewFromInt(1), Memo: string(make([]byte, 101))}, apperror.CodeValidation},
		{"garbled key", domain.TransferOrder{FromAccountID: "0.0.1", ToAccountID: "0.0.2", PrivateKey: "nope", Amount: decimal.NewFromInt(1)}, apperror.CodeEncryption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			_, err := newTestAdapter(gw).Transfer(context.Background(), tt.order)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, gw.transfers)
		})
	}
}

func TestAdapter_Transfer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status string
	}{
		{"payer balance precheck", sdk.ErrHederaPreCheckStatus{Status: sdk.StatusInsufficientPayerBalance}, apperror.CodeInsufficientFunds, ""},
		{"account balance receipt", sdk.ErrHederaReceiptStatus{Status: sdk.StatusInsufficientAccountBalance}, apperror.CodeInsufficientFunds, ""},
		{"invalid destination", sdk.ErrHederaReceiptStatus{Status: sdk.StatusInvalidAccountID}, apperror.CodeInvalidDestination, ""},
		{"deleted destination", sdk.ErrHederaReceiptStatus{Status: sdk.StatusAccountDeleted}, apperror.CodeInvalidDestination, ""},
		{"other status", sdk.ErrHederaReceiptStatus{Status: sdk.StatusInvalidSignature}, apperror.CodeLedgerRejected, "INVALID_SIGNATURE"},
		{"transport", errors.New("rpc error: connection refused"), apperror.CodeLedgerUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{err: tt.err}
			_, err := newTestAdapter(gw).Transfer(context.Background(), domain.TransferOrder{
				FromAccountID: "0.0.1001",
				PrivateKey:    newSenderKey(t).String(),
				ToAccountID:   "0.0.2002",
				Amount:        decimal.NewFromInt(1),
			})
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.LedgerStatus)
			assert.Len(t, gw.transfers, 1)
		})
	}
}

func TestAdapter_IssueToken(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAdapter(gw)

	token, err := a.IssueToken(context.Background(), domain.TokenIssueOrder{
		TreasuryAccountID: "0.0.1001",
		PrivateKey:        newSenderKey(t).String(),
		Name:              " Social Token ",
		Symbol:            "SWT",
		InitialSupply:     1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.0.7777", token.TokenID)
	assert.Equal(t, "Social Token", token.Name)
	assert.Equal(t, uint64(1000), token.InitialSupply)
	assert.Equal(t, "0.0.1001", gw.tokenSpec.Treasury.String())
	assert.Equal(t, uint(0), gw.tokenSpec.Decimals)

	_, err = a.IssueToken(context.Background(), domain.TokenIssueOrder{TreasuryAccountID: "0.0.1001", Symbol: "X"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestAdapter_ListTransactions_InvalidAccount(t *testing.T) {
	_, err := newTestAdapter(&fakeGateway{}).ListTransactions(context.Background(), "bogus", 10)
	assert.True(t, apperror.HasCode(err, apperror.CodeAccountNotFound))
}
