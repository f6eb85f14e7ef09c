package stellar

import (
	"net/http"

	"social-wallet-api/config"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"
)

// Horizon is the part of the Horizon API the adapter uses.
type Horizon interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
	SubmitTransaction(transaction *txnbuild.Transaction) (hProtocol.Transaction, error)
	Payments(request horizonclient.OperationRequest) (operations.OperationsPage, error)
	Assets(request horizonclient.AssetRequest) (hProtocol.AssetsPage, error)
}

var _ Horizon = (*horizonclient.Client)(nil)

// NewHorizonClient returns a stateless Horizon client safe for concurrent use.
func NewHorizonClient(cfg config.StellarConfig) *horizonclient.Client {
	return &horizonclient.Client{
		HorizonURL: cfg.HorizonURL,
		HTTP:       &http.Client{Timeout: cfg.RequestTimeout},
	}
}
