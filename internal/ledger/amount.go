package ledger

import "github.com/shopspring/decimal"

const (
	maxAmountScale    = 8
	maxAmountExponent = 18
)

// checkAmount bounds the precision and magnitude of a caller supplied amount.
// The exponent must be bounded before any comparison: Cmp rescales both sides.
func checkAmount(amount, max decimal.Decimal) error {
	exp := amount.Exponent()
	if exp < -maxAmountScale {
		return newError(KindInvalidInput, "Amount must have at most %d decimal places.", maxAmountScale)
	}
	if exp > maxAmountExponent || (max.IsPositive() && amount.Abs().GreaterThan(max)) {
		return newError(KindInvalidInput, "Amount must not exceed %s.", max.String())
	}
	return nil
}
