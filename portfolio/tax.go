package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxSettings holds the capital gains rates, as fractions in [0, 1].
// These are always passed in explicitly by the caller.
type TaxSettings struct {
	ShortTermRate decimal.Decimal
	LongTermRate  decimal.Decimal
}

func NewTaxSettings(shortTermRate, longTermRate decimal.Decimal) (TaxSettings, error) {
	s := TaxSettings{ShortTermRate: shortTermRate, LongTermRate: longTermRate}
	if err := s.Validate(); err != nil {
		return TaxSettings{}, err
	}
	return s, nil
}

func (s TaxSettings) Validate() error {
	one := decimal.NewFromInt(1)
	checkRate := func(name string, rate decimal.Decimal) error {
		if rate.IsNegative() || rate.GreaterThan(one) {
			return fmt.Errorf("%w: %s rate %s is not within [0, 1]", ErrInvalidSettings, name, rate)
		}
		return nil
	}
	if err := checkRate("short term", s.ShortTermRate); err != nil {
		return err
	}
	return checkRate("long term", s.LongTermRate)
}

type TaxEstimate struct {
	ShortTermGain      decimal.Decimal
	LongTermGain       decimal.Decimal
	ShortTermTax       decimal.Decimal
	LongTermTax        decimal.Decimal
	EstimatedLiability decimal.Decimal
}

// EstimateLiability taxes the positive part of each gain at its rate.
//
// Losses contribute nothing, and are not offset against gains in the other
// term. The estimate is therefore never negative.
func EstimateLiability(shortTermGain, longTermGain decimal.Decimal, settings TaxSettings) (TaxEstimate, error) {
	if err := settings.Validate(); err != nil {
		return TaxEstimate{}, err
	}
	shortTax := decimal.Max(decimal.Zero, shortTermGain).Mul(settings.ShortTermRate)
	longTax := decimal.Max(decimal.Zero, longTermGain).Mul(settings.LongTermRate)
	return TaxEstimate{
		ShortTermGain:      shortTermGain,
		LongTermGain:       longTermGain,
		ShortTermTax:       shortTax,
		LongTermTax:        longTax,
		EstimatedLiability: shortTax.Add(longTax),
	}, nil
}

// EstimateTaxLiability estimates the tax due if every lot in summary were sold
// at its valuation price.
func EstimateTaxLiability(summary *UnrealizedSummary, settings TaxSettings) (TaxEstimate, error) {
	return EstimateLiability(summary.ShortTermGain, summary.LongTermGain, settings)
}

// EstimateRealizedTax estimates the tax on the gains realized in year.
func EstimateRealizedTax(gains *CumulativeRealizedGains, year int, settings TaxSettings) (TaxEstimate, error) {
	yearGains := gains.YearTotals(year)
	return EstimateLiability(yearGains.ShortTerm, yearGains.LongTerm, settings)
}

// Rounded rounds every amount to cents. Only for display or reporting; all
// calculation is done unrounded.
func (e TaxEstimate) Rounded() TaxEstimate {
	return TaxEstimate{
		ShortTermGain:      e.ShortTermGain.Round(2),
		LongTermGain:       e.LongTermGain.Round(2),
		ShortTermTax:       e.ShortTermTax.Round(2),
		LongTermTax:        e.LongTermTax.Round(2),
		EstimatedLiability: e.EstimatedLiability.Round(2),
	}
}
