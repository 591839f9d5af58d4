package fee

import (
	"github.com/shopspring/decimal"
)

// Calculate returns the fee and the net amount for a payment.
//
//	fee = round_half_up(amount * rate, 0) + fixedFee
//	net = amount - fee
//
// Callers guarantee amount > 0 and rate >= 0, so decimal's half-away-from-zero
// rounding is half-up here.
func Calculate(amount, rate decimal.Decimal, fixedFee decimal.NullDecimal) (fee, net decimal.Decimal) {
	fee = amount.Mul(rate).Round(0)
	if fixedFee.Valid {
		fee = fee.Add(fixedFee.Decimal)
	}
	return fee, amount.Sub(fee)
}
