// Package ledger holds helpers shared by the per-network ledger adapters.
package ledger

import (
	"math"

	"social-wallet-api/pkg/apperror"

	"github.com/shopspring/decimal"
)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ToMinorUnits converts a positive amount to the ledger's smallest unit
// (tinybar, stroop). Amounts finer than precision are rejected rather than
// rounded.
func ToMinorUnits(amount decimal.Decimal, precision int32) (int64, error) {
	if !amount.IsPositive() {
		return 0, apperror.ErrInvalidAmount()
	}
	if !amount.Equal(amount.Truncate(precision)) {
		return 0, apperror.ErrInvalidAmount()
	}
	units := amount.Shift(precision)
	if units.GreaterThan(maxMinorUnits) {
		return 0, apperror.ErrInvalidAmount()
	}
	return units.IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(units int64, precision int32) decimal.Decimal {
	return decimal.New(units, -precision)
}
