package stellar

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"social-wallet-api/pkg/apperror"

	"github.com/stellar/go/clients/horizonclient"
)

var (
	insufficientFundsCodes = map[string]bool{
		"op_underfunded":          true,
		"tx_insufficient_balance": true,
		"tx_insufficient_fee":     true,
	}
	invalidDestinationCodes = map[string]bool{
		"op_no_destination": true,
		"op_no_trust":       true,
		"op_line_full":      true,
		"op_malformed":      true,
	}
)

func asHorizonError(err error) (*horizonclient.Error, bool) {
	var herr *horizonclient.Error
	if errors.As(err, &herr) {
		return herr, true
	}
	return nil, false
}

func isNotFound(err error) bool {
	herr, ok := asHorizonError(err)
	return ok && herr.Problem.Status == http.StatusNotFound
}

// mapSubmitError classifies a failed submission by its result codes.
// Timeouts and transport failures leave the outcome unknown.
func mapSubmitError(err error) *apperror.AppError {
	herr, ok := asHorizonError(err)
	if !ok || herr.Problem.Status >= http.StatusInternalServerError {
		return apperror.ErrLedgerUnavailable(err)
	}

	codes, codesErr := herr.ResultCodes()
	if codesErr != nil || codes == nil {
		return apperror.ErrLedgerRejected(fmt.Sprintf("http_%d", herr.Problem.Status))
	}

	all := append([]string{codes.TransactionCode, codes.InnerTransactionCode}, codes.OperationCodes...)
	for _, code := range all {
		if insufficientFundsCodes[code] {
			return apperror.ErrInsufficientFunds()
		}
	}
	for _, code := range all {
		if invalidDestinationCodes[code] {
			return apperror.ErrInvalidDestination("Destination cannot receive this payment on stellar")
		}
	}

	status := codes.TransactionCode
	if len(codes.OperationCodes) > 0 {
		status += "/" + strings.Join(codes.OperationCodes, ",")
	}
	return apperror.ErrLedgerRejected(status)
}

func mapQueryError(err error) *apperror.AppError {
	if isNotFound(err) {
		return apperror.ErrAccountNotFound()
	}
	return apperror.ErrLedgerUnavailable(err)
}
