package portfolio_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tsiemens/lotbook/date"
	ptf "github.com/tsiemens/lotbook/portfolio"
)

func esppLedger(rq *require.Assertions) *ptf.Ledger {
	return buildLedger(rq, ptf.FIFO,
		TTx{Date: date.New(2023, 6, 1), Act: ptf.ESPP_PURCHASE, Shares: DInt(10), Price: DInt(85),
			Grant: date.New(2022, 1, 1), Bargain: DInt(15)}.X(),
		TTx{Date: date.New(2023, 6, 2), Act: ptf.BUY, Shares: DInt(10), Price: DInt(100)}.X(),
	)
}

func TestDisqualifyingDisposition(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := esppLedger(rq)
	lot := l.Lots[0]
	rq.Equal(ptf.ESPP_LOT, lot.Type)
	rq.Equal(date.New(2024, 6, 1), ptf.EsppQualifyingDate(lot))

	r, err := ptf.EvaluateDisposition(lot, DInt(10), DInt(120), date.New(2023, 12, 1))
	rq.NoError(err)
	rq.True(r.Applicable)
	rq.True(r.Disqualifying)
	rq.Equal(date.New(2024, 6, 1), r.QualifyingDate)
	crq.DecEqual("150", r.OrdinaryIncome)
	crq.DecEqual("100", r.AdjustedBasis)
	crq.DecEqual("200", r.CapitalGain)
}

func TestQualifyingDisposition(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := esppLedger(rq)
	r, err := ptf.EvaluateDisposition(l.Lots[0], DInt(4), DInt(120), date.New(2024, 6, 1))
	rq.NoError(err)
	rq.True(r.Applicable)
	rq.False(r.Disqualifying)
	crq.DecEqual("0", r.OrdinaryIncome)
	crq.DecEqual("85", r.AdjustedBasis)
	crq.DecEqual("140", r.CapitalGain)
}

func TestQualifyingDateFromGrant(t *testing.T) {
	rq := require.New(t)

	l := buildLedger(rq, ptf.FIFO,
		TTx{Date: date.New(2023, 1, 15), Act: ptf.ESPP_PURCHASE, Shares: DInt(1), Price: DInt(85),
			Grant: date.New(2022, 7, 1), Bargain: DInt(15)}.X(),
	)
	// Two years from the grant is later than one from the purchase.
	rq.Equal(date.New(2024, 7, 1), ptf.EsppQualifyingDate(l.Lots[0]))
}

func TestNonEsppDisposition(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := esppLedger(rq)
	r, err := ptf.EvaluateDisposition(l.Lots[1], DInt(10), DInt(120), date.New(2023, 12, 1))
	rq.NoError(err)
	rq.False(r.Applicable)
	rq.False(r.Disqualifying)
	crq.DecEqual("0", r.OrdinaryIncome)
	crq.DecEqual("200", r.CapitalGain)
}

func TestDispositionValidation(t *testing.T) {
	rq := require.New(t)

	lot := esppLedger(rq).Lots[0]
	_, err := ptf.EvaluateDisposition(lot, DInt(0), DInt(120), date.New(2023, 12, 1))
	rq.ErrorIs(err, ptf.ErrInvalidSaleRequest)
	_, err = ptf.EvaluateDisposition(lot, DInt(11), DInt(120), date.New(2023, 12, 1))
	rq.ErrorIs(err, ptf.ErrInvalidSaleRequest)
	_, err = ptf.EvaluateDisposition(lot, DInt(1), DInt(-1), date.New(2023, 12, 1))
	rq.ErrorIs(err, ptf.ErrInvalidPrice)
	_, err = ptf.EvaluateDisposition(lot, DInt(1), DInt(120), date.New(2023, 5, 1))
	rq.ErrorIs(err, ptf.ErrInvalidSaleRequest)
}

func TestEvaluateSaleDispositions(t *testing.T) {
	rq := require.New(t)
	crq := NewCustomRequire(t)

	l := esppLedger(rq)
	preview, err := l.PreviewSale(ptf.SaleRequest{
		Quantity: DInt(15), Price: DInt(120), Date: date.New(2023, 12, 1), Strategy: ptf.FIFO,
	})
	rq.NoError(err)
	rq.Equal(2, len(preview.Allocations))

	results, err := ptf.EvaluateSaleDispositions(l.Lots, preview.Allocations, DInt(120))
	rq.NoError(err)
	// Only the ESPP allocation is evaluated.
	rq.Equal(1, len(results))
	rq.Equal(l.Lots[0].Id, results[0].LotId)
	rq.True(results[0].Disqualifying)
	crq.DecEqual("150", results[0].OrdinaryIncome)
}

func TestFindAgingLots(t *testing.T) {
	rq := require.New(t)

	asOf := date.New(2024, 1, 1)
	l := buildLedger(rq, ptf.FIFO,
		// Already long term
		TTx{Date: asOf.AddDays(-400), Act: ptf.BUY, Shares: DInt(1), Price: DInt(1)}.X(),
		// Long term in 1 day
		TTx{Date: asOf.AddDays(-364), Act: ptf.BUY, Shares: DInt(1), Price: DInt(1)}.X(),
		// Long term in 5 days, but sold
		TTx{Date: asOf.AddDays(-360), Act: ptf.BUY, Shares: DInt(1), Price: DInt(1)}.X(),
		// Long term in 10 days
		TTx{Date: asOf.AddDays(-355), Act: ptf.BUY, Shares: DInt(1), Price: DInt(1)}.X(),
		// Long term in 65 days
		TTx{Date: asOf.AddDays(-300), Act: ptf.BUY, Shares: DInt(1), Price: DInt(1)}.X(),
	)
	lotBoughtDaysAgo := func(days int) *ptf.TaxLot {
		for _, lot := range l.Lots {
			if lot.PurchaseDate.Equal(asOf.AddDays(-days)) {
				return lot
			}
		}
		rq.FailNow("no lot bought", "%d days ago", days)
		return nil
	}

	_, err := ptf.AllocateSale(l.Lots, ptf.SaleRequest{
		Quantity: DInt(1), Price: DInt(1), Date: asOf, Strategy: ptf.SpecificId,
		LotIds: []uuid.UUID{lotBoughtDaysAgo(360).Id},
	})
	rq.NoError(err)

	aging, err := ptf.FindAgingLots(l.Lots, asOf, 30)
	rq.NoError(err)
	rq.Equal(2, len(aging))
	rq.Equal(lotBoughtDaysAgo(364).Id, aging[0].Lot.Id)
	rq.Equal(1, aging[0].DaysUntilLongTerm)
	rq.Equal(asOf.AddDays(1), aging[0].LongTermDate)
	rq.Equal(lotBoughtDaysAgo(355).Id, aging[1].Lot.Id)
	rq.Equal(10, aging[1].DaysUntilLongTerm)

	aging, err = ptf.FindAgingLots(l.Lots, asOf, 0)
	rq.NoError(err)
	rq.Equal(0, len(aging))

	_, err = ptf.FindAgingLots(l.Lots, asOf, -1)
	rq.ErrorIs(err, ptf.ErrInvalidSaleRequest)
}
