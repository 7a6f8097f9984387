// Package decimal_value provides a decimal which may be undefined, for values
// like the average cost of an empty holding.
package decimal_value

import (
	"github.com/shopspring/decimal"
)

var Null = DecimalOpt{IsNull: true}

type DecimalOpt struct {
	Decimal decimal.Decimal
	IsNull  bool
}

func New(value decimal.Decimal) DecimalOpt {
	return DecimalOpt{Decimal: value}
}

// DivD divides by d2. Division by zero yields Null rather than panicking.
func (d DecimalOpt) DivD(d2 decimal.Decimal) DecimalOpt {
	if d.IsNull || d2.IsZero() {
		return Null
	}
	return DecimalOpt{Decimal: d.Decimal.Div(d2)}
}

func (d DecimalOpt) String() string {
	if d.IsNull {
		return "NaN"
	}
	return d.Decimal.String()
}
