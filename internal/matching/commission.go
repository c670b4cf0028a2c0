package matching

import (
	"github.com/shopspring/decimal"
)

// commissionRate is the fixed 0.1% fee applied to every committed trade
// (spec §4.6 / §8: "round(amount * price * 0.001 * 100) / 100").
var commissionRate = decimal.NewFromFloat(0.001)

// Commission computes the two-decimal commission for a trade of amount lots
// at price, per spec §8's exact invariant. decimal.Decimal's RoundBank is
// avoided deliberately: the spec's formula is plain round-half-up via the
// *100/100 shift, not banker's rounding.
func Commission(amount int64, price decimal.Decimal) decimal.Decimal {
	notional := decimal.NewFromInt(amount).Mul(price).Mul(commissionRate)
	return notional.Round(2)
}
