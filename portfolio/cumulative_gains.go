package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/util"
)

type RealizedGainTotals struct {
	Total     decimal.Decimal
	ShortTerm decimal.Decimal
	LongTerm  decimal.Decimal
}

func (t RealizedGainTotals) add(o RealizedGainTotals) RealizedGainTotals {
	return RealizedGainTotals{
		Total:     t.Total.Add(o.Total),
		ShortTerm: t.ShortTerm.Add(o.ShortTerm),
		LongTerm:  t.LongTerm.Add(o.LongTerm),
	}
}

type CumulativeRealizedGains struct {
	RealizedGainsTotal      RealizedGainTotals
	RealizedGainsYearTotals map[int]RealizedGainTotals
}

func (g *CumulativeRealizedGains) YearTotals(year int) RealizedGainTotals {
	return g.RealizedGainsYearTotals[year]
}

func (g *CumulativeRealizedGains) RealizedGainsYearTotalsKeysSorted() []int {
	return util.SortedIntKeys(g.RealizedGainsYearTotals)
}

func CalcSecurityCumulativeRealizedGains(sales []*SaleRecord) *CumulativeRealizedGains {
	total := RealizedGainTotals{}
	yearTotals := map[int]RealizedGainTotals{}

	for _, s := range sales {
		saleTotals := RealizedGainTotals{
			Total:     s.Totals.RealizedGain,
			ShortTerm: s.Totals.ShortTermGain,
			LongTerm:  s.Totals.LongTermGain,
		}
		total = total.add(saleTotals)
		year := s.Tx.Date.Year()
		yearTotals[year] = yearTotals[year].add(saleTotals)
	}

	return &CumulativeRealizedGains{total, yearTotals}
}

func CalcCumulativeRealizedGains(secGains map[string]*CumulativeRealizedGains) *CumulativeRealizedGains {
	total := RealizedGainTotals{}
	yearTotals := map[int]RealizedGainTotals{}

	for _, gains := range secGains {
		total = total.add(gains.RealizedGainsTotal)
		for year, yearGains := range gains.RealizedGainsYearTotals {
			yearTotals[year] = yearTotals[year].add(yearGains)
		}
	}

	return &CumulativeRealizedGains{total, yearTotals}
}
