package portfolio

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/util"
)

type SaleRequest struct {
	Security   string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
	Date       date.Date
	Strategy   LotSelectionStrategy
	// Only used with SpecificId, in consumption order.
	LotIds []uuid.UUID
}

// SaleAllocation is the portion of a sale drawn from a single lot.
type SaleAllocation struct {
	LotId           uuid.UUID
	LotType         LotType
	AcquisitionDate date.Date
	DisposalDate    date.Date
	Quantity        decimal.Decimal
	CostBasis       decimal.Decimal
	// Net of this allocation's share of the sale commission.
	Proceeds      decimal.Decimal
	Commission    decimal.Decimal
	RealizedGain  decimal.Decimal
	HoldingPeriod HoldingPeriod
}

type AllocationTotals struct {
	Quantity      decimal.Decimal
	CostBasis     decimal.Decimal
	Proceeds      decimal.Decimal
	RealizedGain  decimal.Decimal
	ShortTermGain decimal.Decimal
	LongTermGain  decimal.Decimal
}

func SumAllocations(allocs []SaleAllocation) AllocationTotals {
	t := AllocationTotals{}
	for _, a := range allocs {
		t.Quantity = t.Quantity.Add(a.Quantity)
		t.CostBasis = t.CostBasis.Add(a.CostBasis)
		t.Proceeds = t.Proceeds.Add(a.Proceeds)
		t.RealizedGain = t.RealizedGain.Add(a.RealizedGain)
		if a.HoldingPeriod == LONG_TERM {
			t.LongTermGain = t.LongTermGain.Add(a.RealizedGain)
		} else {
			t.ShortTermGain = t.ShortTermGain.Add(a.RealizedGain)
		}
	}
	return t
}

func checkSaleRequest(req SaleRequest) error {
	reqError := func(fmtStr string, v ...interface{}) error {
		return fmt.Errorf("%w: sale on %v of %s shares of %s: "+fmtStr,
			append([]interface{}{ErrInvalidSaleRequest, req.Date, req.Quantity, req.Security}, v...)...)
	}
	if !req.Quantity.IsPositive() {
		return reqError("quantity must be positive")
	} else if req.Price.IsNegative() {
		return reqError("negative price (%s)", req.Price)
	} else if req.Commission.IsNegative() {
		return reqError("negative commission (%s)", req.Commission)
	} else if req.Date.IsZero() {
		return reqError("no disposal date")
	}
	return nil
}

// AllocateSale consumes req.Quantity shares from lots in the order given by
// req.Strategy, and returns one allocation per lot touched. Consumed lots are
// mutated in place.
//
// If the eligible lots hold fewer shares than requested, an
// *InsufficientLotsError is returned and no lot is modified.
func AllocateSale(lots []*TaxLot, req SaleRequest) ([]SaleAllocation, error) {
	return allocate(lots, req, true)
}

// allocate is shared by sales and transfers out. When realize is false, the
// allocations carry no proceeds and no gain.
func allocate(lots []*TaxLot, req SaleRequest, realize bool) ([]SaleAllocation, error) {
	if err := checkSaleRequest(req); err != nil {
		return nil, err
	}
	ordered, err := orderLots(lots, req.Strategy, req.LotIds)
	if err != nil {
		return nil, err
	}

	available := decimal.Zero
	for _, lot := range ordered {
		available = available.Add(lot.RemainingQuantity)
	}
	if available.LessThan(req.Quantity) {
		return nil, &InsufficientLotsError{
			Security: req.Security, Date: req.Date,
			Requested: req.Quantity, Available: available,
		}
	}

	allocs := make([]SaleAllocation, 0, len(ordered))
	toSell := req.Quantity
	commissionLeft := req.Commission
	for _, lot := range ordered {
		if toSell.IsZero() {
			break
		}
		if !lot.IsOpen() {
			continue
		}
		q := util.MinDecimal(lot.RemainingQuantity, toSell)
		cost := lot.CostOf(q)
		lot.consume(q)
		toSell = toSell.Sub(q)

		a := SaleAllocation{
			LotId:           lot.Id,
			LotType:         lot.Type,
			AcquisitionDate: lot.PurchaseDate,
			DisposalDate:    req.Date,
			Quantity:        q,
			CostBasis:       cost,
			Proceeds:        decimal.Zero,
			Commission:      decimal.Zero,
			RealizedGain:    decimal.Zero,
			HoldingPeriod:   ClassifyHoldingPeriod(lot.PurchaseDate, req.Date),
		}
		if realize {
			// The last allocation takes whatever commission is left, so the
			// shares always sum to the full commission.
			if toSell.IsZero() {
				a.Commission = commissionLeft
			} else {
				a.Commission = req.Commission.Mul(q).Div(req.Quantity)
			}
			commissionLeft = commissionLeft.Sub(a.Commission)
			a.Proceeds = q.Mul(req.Price).Sub(a.Commission)
			a.RealizedGain = a.Proceeds.Sub(cost)
		}
		allocs = append(allocs, a)
	}
	util.Assertf(toSell.IsZero(), "allocate: %s shares left unallocated", toSell)
	return allocs, nil
}

// SalePreview is the result of a speculative sale. Lots is the post-sale
// snapshot of a clone of the input lots.
type SalePreview struct {
	Request     SaleRequest
	Allocations []SaleAllocation
	Totals      AllocationTotals
	Lots        []*TaxLot
}

// PreviewSale runs AllocateSale against a clone of lots. The caller's lots are
// never modified, so previews may run freely against a shared ledger.
func PreviewSale(lots []*TaxLot, req SaleRequest) (*SalePreview, error) {
	snapshot := CloneLots(lots)
	allocs, err := AllocateSale(snapshot, req)
	if err != nil {
		return nil, err
	}
	return &SalePreview{
		Request:     req,
		Allocations: allocs,
		Totals:      SumAllocations(allocs),
		Lots:        snapshot,
	}, nil
}
