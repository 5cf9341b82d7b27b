package swap

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ToBaseUnits scales a human-readable amount up by 10^decimals and floors
// toward zero, yielding an integer string in base units.
func ToBaseUnits(amount decimal.Decimal, decimals int32) string {
	return amount.Shift(decimals).Floor().String()
}

// FromBaseUnits scales an integer base-unit string down by 10^decimals.
// The division is exact; no floating point is involved.
func FromBaseUnits(amount string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid base unit amount %q: %w", amount, err)
	}
	return d.Shift(-decimals), nil
}
