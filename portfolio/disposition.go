package portfolio

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
)

const (
	EsppGrantHoldingYears    = 2
	EsppPurchaseHoldingYears = 1
)

// DispositionResult describes the tax character of selling some shares of a
// lot. Applicable is only true for ESPP lots.
type DispositionResult struct {
	LotId          uuid.UUID
	Quantity       decimal.Decimal
	DisposalDate   date.Date
	Applicable     bool
	Disqualifying  bool
	QualifyingDate date.Date // First date a disposition would qualify

	// Per share basis used for the capital gain.
	AdjustedBasis  decimal.Decimal
	OrdinaryIncome decimal.Decimal
	CapitalGain    decimal.Decimal
}

// EsppQualifyingDate returns the first date on which selling an ESPP lot is a
// qualifying disposition: two calendar years after the grant, and one after
// the purchase, whichever is later.
func EsppQualifyingDate(lot *TaxLot) date.Date {
	fromGrant := lot.GrantDate.AddYears(EsppGrantHoldingYears)
	fromPurchase := lot.PurchaseDate.AddYears(EsppPurchaseHoldingYears)
	if fromGrant.After(fromPurchase) {
		return fromGrant
	}
	return fromPurchase
}

// EvaluateDisposition classifies selling quantity shares of lot at salePrice
// on disposalDate.
//
// For an ESPP lot, the disposition qualifies only if both holding requirements
// are met on the disposal date. Otherwise it is disqualifying: the recorded
// bargain element is ordinary income, and the capital gain is measured from
// the adjusted basis (purchase price plus bargain element).
//
// Other lots are not subject to these rules, and get a plain capital gain.
func EvaluateDisposition(
	lot *TaxLot, quantity decimal.Decimal, salePrice decimal.Decimal, disposalDate date.Date,
) (DispositionResult, error) {
	if !quantity.IsPositive() {
		return DispositionResult{}, fmt.Errorf("%w: disposition of lot %s: quantity must be positive",
			ErrInvalidSaleRequest, lot.Id)
	} else if quantity.GreaterThan(lot.Quantity) {
		return DispositionResult{}, fmt.Errorf(
			"%w: disposition of %s shares of lot %s, which only ever held %s",
			ErrInvalidSaleRequest, quantity, lot.Id, lot.Quantity)
	} else if salePrice.IsNegative() {
		return DispositionResult{}, fmt.Errorf("%w: disposition of lot %s: negative price (%s)",
			ErrInvalidPrice, lot.Id, salePrice)
	} else if disposalDate.Before(lot.PurchaseDate) {
		return DispositionResult{}, fmt.Errorf("%w: disposition of lot %s on %v, before its purchase on %v",
			ErrInvalidSaleRequest, lot.Id, disposalDate, lot.PurchaseDate)
	}

	r := DispositionResult{
		LotId:          lot.Id,
		Quantity:       quantity,
		DisposalDate:   disposalDate,
		AdjustedBasis:  lot.PurchasePrice(),
		OrdinaryIncome: decimal.Zero,
	}
	if lot.Type == ESPP_LOT {
		r.Applicable = true
		r.QualifyingDate = EsppQualifyingDate(lot)
		r.Disqualifying = disposalDate.Before(r.QualifyingDate)
		if r.Disqualifying {
			r.OrdinaryIncome = quantity.Mul(lot.BargainElement)
			r.AdjustedBasis = lot.AdjustedBasisPerShare()
		}
	}
	r.CapitalGain = quantity.Mul(salePrice.Sub(r.AdjustedBasis))
	return r, nil
}

// EvaluateSaleDispositions runs EvaluateDisposition for every ESPP allocation
// of a sale. lots must contain the allocated lots.
func EvaluateSaleDispositions(
	lots []*TaxLot, allocs []SaleAllocation, salePrice decimal.Decimal,
) ([]DispositionResult, error) {
	var results []DispositionResult
	for _, a := range allocs {
		if a.LotType != ESPP_LOT {
			continue
		}
		lot := FindLot(lots, a.LotId)
		if lot == nil {
			return nil, fmt.Errorf("%w: allocation refers to unknown lot %s", ErrInvalidSaleRequest, a.LotId)
		}
		r, err := EvaluateDisposition(lot, a.Quantity, salePrice, a.DisposalDate)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// AgingLot is an open short term lot that turns long term soon.
type AgingLot struct {
	Lot               *TaxLot
	LongTermDate      date.Date
	DaysUntilLongTerm int
}

// FindAgingLots returns the open lots which are short term as of asOf, and
// will be long term within horizonDays. Soonest first. A zero asOf means today.
func FindAgingLots(lots []*TaxLot, asOf date.Date, horizonDays int) ([]AgingLot, error) {
	if horizonDays < 0 {
		return nil, fmt.Errorf("%w: negative aging horizon (%d days)", ErrInvalidSaleRequest, horizonDays)
	}
	asOf = asOf.OrToday()
	var aging []AgingLot
	for _, lot := range lots {
		if !lot.IsOpen() || ClassifyHoldingPeriod(lot.PurchaseDate, asOf) == LONG_TERM {
			continue
		}
		longTermDate := LongTermDate(lot.PurchaseDate)
		daysLeft := longTermDate.DaysSince(asOf)
		if daysLeft <= horizonDays {
			aging = append(aging, AgingLot{Lot: lot, LongTermDate: longTermDate, DaysUntilLongTerm: daysLeft})
		}
	}
	sort.SliceStable(aging, func(i, j int) bool {
		return aging[i].DaysUntilLongTerm < aging[j].DaysUntilLongTerm
	})
	return aging, nil
}
