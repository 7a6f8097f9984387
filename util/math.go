package util

import "github.com/shopspring/decimal"

func MinDecimal(val0 decimal.Decimal, vals ...decimal.Decimal) decimal.Decimal {
	min := val0
	for _, v := range vals {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}

// Percent returns num/denom*100, or zero if denom is zero.
func Percent(num, denom decimal.Decimal) decimal.Decimal {
	if denom.IsZero() {
		return decimal.Zero
	}
	return num.Mul(decimal.NewFromInt(100)).Div(denom)
}
