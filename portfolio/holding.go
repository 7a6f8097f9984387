package portfolio

import (
	"github.com/shopspring/decimal"

	decimal_opt "github.com/tsiemens/lotbook/decimal_value"
	"github.com/tsiemens/lotbook/util"
)

// Holding aggregates the open lots of one security. It is derived from the
// lots and never edited directly.
type Holding struct {
	Security    string
	Quantity    decimal.Decimal
	CostBasis   decimal.Decimal
	AverageCost decimal_opt.DecimalOpt // Null when Quantity is zero

	// Set by Revalue
	Priced                bool
	CurrentPrice          decimal.Decimal
	MarketValue           decimal.Decimal
	UnrealizedGain        decimal.Decimal
	UnrealizedGainPercent decimal.Decimal
}

func NewHolding(security string, lots []*TaxLot) *Holding {
	quantity, cost := totalRemaining(lots)
	return &Holding{
		Security:    security,
		Quantity:    quantity,
		CostBasis:   cost,
		AverageCost: decimal_opt.New(cost).DivD(quantity),
	}
}

func (h *Holding) Revalue(price decimal.Decimal) {
	h.Priced = true
	h.CurrentPrice = price
	h.MarketValue = h.Quantity.Mul(price)
	h.UnrealizedGain = h.MarketValue.Sub(h.CostBasis)
	h.UnrealizedGainPercent = util.Percent(h.UnrealizedGain, h.CostBasis)
}
