package hedera

import (
	"errors"

	"social-wallet-api/pkg/apperror"

	sdk "github.com/hashgraph/hedera-sdk-go/v2"
)

// ledgerStatus extracts the consensus or precheck status from an SDK error.
func ledgerStatus(err error) (sdk.Status, bool) {
	var receiptErr sdk.ErrHederaReceiptStatus
	if errors.As(err, &receiptErr) {
		return receiptErr.Status, true
	}
	var precheckErr sdk.ErrHederaPreCheckStatus
	if errors.As(err, &precheckErr) {
		return precheckErr.Status, true
	}
	return 0, false
}

// mapError converts an SDK error into a ledger error kind. Anything that is
// not a ledger verdict is treated as a transport failure.
func mapError(err error) *apperror.AppError {
	status, ok := ledgerStatus(err)
	if !ok {
		if errors.Is(err, errMissingReceiptID) {
			return apperror.ErrLedgerRejected("MISSING_RECEIPT_ID")
		}
		return apperror.ErrLedgerUnavailable(err)
	}

	switch status {
	case sdk.StatusInsufficientPayerBalance, sdk.StatusInsufficientAccountBalance:
		return apperror.ErrInsufficientFunds()
	case sdk.StatusInvalidAccountID, sdk.StatusAccountDeleted:
		return apperror.ErrInvalidDestination("Destination account does not exist on hedera")
	default:
		return apperror.ErrLedgerRejected(status.String())
	}
}

// mapQueryError treats an unknown account as AccountNotFound.
func mapQueryError(err error) *apperror.AppError {
	if status, ok := ledgerStatus(err); ok {
		if status == sdk.StatusInvalidAccountID || status == sdk.StatusAccountDeleted {
			return apperror.ErrAccountNotFound()
		}
	}
	return mapError(err)
}
