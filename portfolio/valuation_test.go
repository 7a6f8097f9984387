package portfolio_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tsiemens/lotbook/date"
	ptf "github.com/tsiemens/lotbook/portfolio"
)

func TestHoldingPeriodBoundary(t *testing.T) {
	rq := require.New(t)

	acquired := date.New(2023, 3, 15)
	rq.Equal(ptf.SHORT_TERM, ptf.ClassifyHoldingPeriod(acquired, acquired))
	rq.Equal(ptf.SHORT_TERM, ptf.ClassifyHoldingPeriod(acquired, acquired.AddDays(364)))
	rq.Equal(ptf.LONG_TERM, ptf.ClassifyHoldingPeriod(acquired, acquired.AddDays(365)))
	rq.Equal(ptf.LONG_TERM, ptf.ClassifyHoldingPeriod(acquired, acquired.AddDays(1000)))
	rq.Equal(acquired.AddDays(365), ptf.LongTermDate(acquired))

	// A fixed day count, even across a leap day.
	leapAcquired := date.New(2023, 6, 1)
	rq.Equal(ptf.LONG_TERM, ptf.ClassifyHoldingPeriod(leapAcquired, date.New(2024, 5, 31)))

	// Allocations use the same rule.
	l := buildLedger(rq, ptf.FIFO,
		TTx{Date: acquired, Act: ptf.BUY, Shares: DInt(1), Price: DInt(100)}.X(),
		TTx{Date: acquired.AddDays(1), Act: ptf.BUY, Shares: DInt(1), Price: DInt(100)}.X(),
		TTx{Date: acquired.AddDays(365), Act: ptf.SELL, Shares: DInt(2), Price: DInt(110)}.X(),
	)
	allocs := l.Sales[0].Allocations
	rq.Equal(ptf.LONG_TERM, allocs[0].HoldingPeriod)
	rq.Equal(ptf.SHORT_TERM, allocs[1].HoldingPeriod)
	crq := NewCustomRequire(t)
	crq.DecEqual("10", l.Sales[0].Totals.LongTermGain)
	crq.DecEqual("10", l.Sales[0].Totals.ShortTermGain)
}

func TestValueLots(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := buildLedger(rq, ptf.FIFO,
		TTx{Date: date.New(2022, 1, 10), Act: ptf.BUY, Shares: DInt(10), Price: DInt(100)}.X(),
		TTx{Date: date.New(2022, 2, 1), Act: ptf.BUY, Shares: DInt(5), Price: DInt(100)}.X(),
		TTx{Date: date.New(2022, 3, 1), Act: ptf.SELL, Shares: DInt(10), Price: DInt(110)}.X(),
		TTx{Date: date.New(2023, 6, 1), Act: ptf.BUY, Shares: DInt(10), Price: DInt(120)}.X(),
		TTx{Date: date.New(2023, 7, 1), Act: ptf.BUY, Shares: DInt(5), Price: DInt(160)}.X(),
	)
	summary, err := ptf.ValueLots(l.Lots, DInt(150), date.New(2023, 9, 1))
	rq.NoError(err)

	// The first lot is depleted and skipped.
	rq.Equal(3, len(summary.Lots))
	crq.DecEqual("20", summary.Quantity)
	crq.DecEqual("3000", summary.MarketValue)
	crq.DecEqual("2500", summary.CostBasis)
	crq.DecEqual("250", summary.LongTermGain)
	crq.DecEqual("250", summary.ShortTermGain)
	crq.DecEqual("500", summary.UnrealizedGain())
	crq.DecEqual("20", summary.UnrealizedGainPercent())

	v := summary.Lots[0]
	crq.DecEqual("50", v.UnrealizedGainPercent)
	rq.Equal(ptf.LONG_TERM, v.HoldingPeriod)
	last := summary.Lots[2]
	crq.DecEqual("-50", last.UnrealizedGain)
	rq.Equal(ptf.SHORT_TERM, last.HoldingPeriod)

	_, err = ptf.ValueLots(l.Lots, DInt(-1), date.New(2023, 9, 1))
	rq.ErrorIs(err, ptf.ErrInvalidPrice)
}

func TestValueLotsDefaultsToToday(t *testing.T) {
	rq := require.New(t)

	date.TodaysDateForTest = date.New(2030, 1, 1)
	defer func() { date.TodaysDateForTest = date.Date{} }()

	l := buildLedger(rq, ptf.FIFO, TTx{Day: 1, Act: ptf.BUY, Shares: DInt(1), Price: DInt(1)}.X())
	summary, err := ptf.ValueLots(l.Lots, DInt(2), date.Date{})
	rq.NoError(err)
	rq.Equal(date.New(2030, 1, 1), summary.AsOf)
	rq.Equal(ptf.LONG_TERM, summary.Lots[0].HoldingPeriod)
}

func TestZeroCostPercent(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := buildLedger(rq, ptf.FIFO, TTx{Day: 1, Act: ptf.TRANSFER_IN, Shares: DInt(5)}.X())
	summary, err := ptf.ValueLots(l.Lots, DInt(10), mkDate(2))
	rq.NoError(err)
	crq.DecEqual("50", summary.UnrealizedGain())
	crq.DecEqual("0", summary.UnrealizedGainPercent())
	crq.DecEqual("0", summary.Lots[0].UnrealizedGainPercent)
}

func TestHoldingRevalue(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := buildLedger(rq, ptf.FIFO, TTx{Day: 1, Act: ptf.BUY, Shares: DInt(4), Price: DInt(25)}.X())
	rq.False(l.Holding.Priced)
	l.Holding.Revalue(DInt(30))
	rq.True(l.Holding.Priced)
	crq.DecEqual("120", l.Holding.MarketValue)
	crq.DecEqual("20", l.Holding.UnrealizedGain)
	crq.DecEqual("20", l.Holding.UnrealizedGainPercent)

	empty := ptf.NewHolding("FOO", nil)
	rq.True(empty.AverageCost.IsNull)
}

func rates(rq *require.Assertions, short, long string) ptf.TaxSettings {
	s, err := ptf.NewTaxSettings(DStr(short), DStr(long))
	rq.NoError(err)
	return s
}

func TestTaxSignPolicy(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	settings := rates(rq, "0.37", "0.2")

	e, err := ptf.EstimateLiability(DInt(1000), DInt(2000), settings)
	rq.NoError(err)
	crq.DecEqual("370", e.ShortTermTax)
	crq.DecEqual("400", e.LongTermTax)
	crq.DecEqual("770", e.EstimatedLiability)

	// Losses never offset the other term, and never go negative.
	e, err = ptf.EstimateLiability(DInt(-5000), DInt(2000), settings)
	rq.NoError(err)
	crq.DecEqual("0", e.ShortTermTax)
	crq.DecEqual("400", e.EstimatedLiability)
	crq.DecEqual("-5000", e.ShortTermGain)

	e, err = ptf.EstimateLiability(DInt(-1), DInt(-1), settings)
	rq.NoError(err)
	crq.DecEqual("0", e.EstimatedLiability)

	e, err = ptf.EstimateLiability(DStr("10.005"), decimal.Zero, rates(rq, "0.5", "0"))
	rq.NoError(err)
	crq.DecEqual("5.0025", e.EstimatedLiability)
	crq.DecEqual("5", e.Rounded().EstimatedLiability)
}

func TestTaxSettingsValidation(t *testing.T) {
	rq := require.New(t)

	for _, pair := range [][2]string{{"-0.1", "0.2"}, {"0.2", "1.01"}} {
		_, err := ptf.NewTaxSettings(DStr(pair[0]), DStr(pair[1]))
		rq.ErrorIs(err, ptf.ErrInvalidSettings)
	}
	_, err := ptf.NewTaxSettings(DInt(0), DInt(1))
	rq.NoError(err)

	_, err = ptf.EstimateLiability(DInt(1), DInt(1), ptf.TaxSettings{ShortTermRate: DInt(2)})
	rq.ErrorIs(err, ptf.ErrInvalidSettings)
}

func TestEstimateTaxLiabilityFromSummary(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := buildLedger(rq, ptf.FIFO,
		TTx{Date: date.New(2020, 1, 1), Act: ptf.BUY, Shares: DInt(10), Price: DInt(100)}.X(),
		TTx{Date: date.New(2023, 8, 1), Act: ptf.BUY, Shares: DInt(10), Price: DInt(100)}.X(),
	)
	summary, err := ptf.ValueLots(l.Lots, DInt(110), date.New(2023, 9, 1))
	rq.NoError(err)
	e, err := ptf.EstimateTaxLiability(summary, rates(rq, "0.3", "0.15"))
	rq.NoError(err)
	crq.DecEqual("100", e.ShortTermGain)
	crq.DecEqual("100", e.LongTermGain)
	crq.DecEqual("45", e.EstimatedLiability)
}

func TestEstimateRealizedTax(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := buildLedger(rq, ptf.FIFO,
		TTx{Date: date.New(2020, 1, 1), Act: ptf.BUY, Shares: DInt(10), Price: DInt(100)}.X(),
		TTx{Date: date.New(2022, 2, 1), Act: ptf.SELL, Shares: DInt(2), Price: DInt(150)}.X(),
		TTx{Date: date.New(2023, 2, 1), Act: ptf.SELL, Shares: DInt(2), Price: DInt(90)}.X(),
	)
	gains := ptf.CalcSecurityCumulativeRealizedGains(l.Sales)
	settings := rates(rq, "0.3", "0.15")

	e, err := ptf.EstimateRealizedTax(gains, 2022, settings)
	rq.NoError(err)
	crq.DecEqual("100", e.LongTermGain)
	crq.DecEqual("15", e.EstimatedLiability)

	e, err = ptf.EstimateRealizedTax(gains, 2023, settings)
	rq.NoError(err)
	crq.DecEqual("-20", e.LongTermGain)
	crq.DecEqual("0", e.EstimatedLiability)

	e, err = ptf.EstimateRealizedTax(gains, 2019, settings)
	rq.NoError(err)
	crq.DecEqual("0", e.EstimatedLiability)
}
