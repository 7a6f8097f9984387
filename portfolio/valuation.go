package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/util"
)

type LotValuation struct {
	Lot                   *TaxLot
	MarketValue           decimal.Decimal
	CostBasis             decimal.Decimal
	UnrealizedGain        decimal.Decimal
	UnrealizedGainPercent decimal.Decimal // Zero when CostBasis is zero
	HoldingPeriod         HoldingPeriod
}

// UnrealizedSummary is the valuation of a set of open lots at one price,
// partitioned by holding period as of AsOf.
type UnrealizedSummary struct {
	AsOf          date.Date
	Price         decimal.Decimal
	Lots          []LotValuation
	Quantity      decimal.Decimal
	MarketValue   decimal.Decimal
	CostBasis     decimal.Decimal
	ShortTermGain decimal.Decimal
	LongTermGain  decimal.Decimal
}

func (s *UnrealizedSummary) UnrealizedGain() decimal.Decimal {
	return s.ShortTermGain.Add(s.LongTermGain)
}

func (s *UnrealizedSummary) UnrealizedGainPercent() decimal.Decimal {
	return util.Percent(s.UnrealizedGain(), s.CostBasis)
}

// ValueLots applies currentPrice to every open lot. Depleted lots are skipped.
// A zero asOf means today.
func ValueLots(lots []*TaxLot, currentPrice decimal.Decimal, asOf date.Date) (*UnrealizedSummary, error) {
	if currentPrice.IsNegative() {
		return nil, fmt.Errorf("%w: negative current price (%s)", ErrInvalidPrice, currentPrice)
	}
	asOf = asOf.OrToday()
	s := &UnrealizedSummary{AsOf: asOf, Price: currentPrice}
	for _, lot := range lots {
		if !lot.IsOpen() {
			continue
		}
		cost := lot.RemainingCost()
		value := lot.RemainingQuantity.Mul(currentPrice)
		gain := value.Sub(cost)
		v := LotValuation{
			Lot:                   lot,
			MarketValue:           value,
			CostBasis:             cost,
			UnrealizedGain:        gain,
			UnrealizedGainPercent: util.Percent(gain, cost),
			HoldingPeriod:         ClassifyHoldingPeriod(lot.PurchaseDate, asOf),
		}
		s.Lots = append(s.Lots, v)
		s.Quantity = s.Quantity.Add(lot.RemainingQuantity)
		s.MarketValue = s.MarketValue.Add(value)
		s.CostBasis = s.CostBasis.Add(cost)
		if v.HoldingPeriod == LONG_TERM {
			s.LongTermGain = s.LongTermGain.Add(gain)
		} else {
			s.ShortTermGain = s.ShortTermGain.Add(gain)
		}
	}
	return s, nil
}
