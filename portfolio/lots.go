package portfolio

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/util"
)

var lotIdNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tsiemens/lotbook/lot"))

// NewLotId derives a stable id for the seq'th lot of a security's ledger, so
// replaying the same history always yields the same ids.
func NewLotId(security string, seq int, acquired date.Date) uuid.UUID {
	return uuid.NewSHA1(lotIdNamespace, []byte(fmt.Sprintf("%s/%d/%s", security, seq, acquired)))
}

// TaxLot is one discrete acquisition of a security.
//
// Cost is held as TotalCost, the cost of the original Quantity. The cost of any
// portion is derived from it (multiplying before dividing), which keeps cost
// basis exact across splits.
type TaxLot struct {
	Id           uuid.UUID
	Security     string
	Type         LotType
	PurchaseDate date.Date

	Quantity          decimal.Decimal
	SoldQuantity      decimal.Decimal
	RemainingQuantity decimal.Decimal
	TotalCost         decimal.Decimal

	// ESPP
	GrantDate      date.Date
	BargainElement decimal.Decimal

	// RSU. VestingPrice is the fair market value at vest, the basis per share
	// before any vest commission.
	VestingDate  date.Date
	VestingPrice decimal.Decimal
}

func newTaxLot(id uuid.UUID, security string, lotType LotType, purchased date.Date,
	quantity decimal.Decimal, totalCost decimal.Decimal) *TaxLot {
	util.Assertf(quantity.IsPositive(), "newTaxLot: non-positive quantity %s", quantity)
	return &TaxLot{
		Id:                id,
		Security:          security,
		Type:              lotType,
		PurchaseDate:      purchased,
		Quantity:          quantity,
		SoldQuantity:      decimal.Zero,
		RemainingQuantity: quantity,
		TotalCost:         totalCost,
	}
}

// PurchasePrice is the unit cost of the lot.
func (l *TaxLot) PurchasePrice() decimal.Decimal {
	if l.Quantity.IsZero() {
		return decimal.Zero
	}
	return l.TotalCost.Div(l.Quantity)
}

// AdjustedBasisPerShare is the purchase price plus any ESPP bargain element.
// This is the basis used for a disqualifying ESPP disposition.
func (l *TaxLot) AdjustedBasisPerShare() decimal.Decimal {
	return l.PurchasePrice().Add(l.BargainElement)
}

// CostOf returns the cost of q shares of this lot.
func (l *TaxLot) CostOf(q decimal.Decimal) decimal.Decimal {
	if q.Equal(l.Quantity) {
		return l.TotalCost
	}
	return l.TotalCost.Mul(q).Div(l.Quantity)
}

func (l *TaxLot) RemainingCost() decimal.Decimal {
	return l.CostOf(l.RemainingQuantity)
}

func (l *TaxLot) IsOpen() bool {
	return l.RemainingQuantity.IsPositive()
}

func (l *TaxLot) checkQuantities() {
	util.Assertf(l.SoldQuantity.Add(l.RemainingQuantity).Equal(l.Quantity),
		"Lot %s of %s: sold (%s) + remaining (%s) != quantity (%s)",
		l.Id, l.Security, l.SoldQuantity, l.RemainingQuantity, l.Quantity)
	util.Assertf(!l.SoldQuantity.IsNegative() && !l.RemainingQuantity.IsNegative(),
		"Lot %s of %s: negative sold (%s) or remaining (%s) quantity",
		l.Id, l.Security, l.SoldQuantity, l.RemainingQuantity)
}

func (l *TaxLot) consume(q decimal.Decimal) {
	util.Assertf(q.LessThanOrEqual(l.RemainingQuantity),
		"Lot %s of %s: consuming %s of %s remaining", l.Id, l.Security, q, l.RemainingQuantity)
	l.SoldQuantity = l.SoldQuantity.Add(q)
	l.RemainingQuantity = l.RemainingQuantity.Sub(q)
	l.checkQuantities()
}

// applySplit scales share counts by ratio. TotalCost is untouched, so the cost
// basis of the lot, and of any portion of it, is unchanged.
func (l *TaxLot) applySplit(ratio decimal.Decimal) {
	l.Quantity = l.Quantity.Mul(ratio)
	l.SoldQuantity = l.SoldQuantity.Mul(ratio)
	l.RemainingQuantity = l.RemainingQuantity.Mul(ratio)
	if !l.BargainElement.IsZero() {
		l.BargainElement = l.BargainElement.Div(ratio)
	}
	if !l.VestingPrice.IsZero() {
		l.VestingPrice = l.VestingPrice.Div(ratio)
	}
	l.checkQuantities()
}

func (l *TaxLot) Clone() *TaxLot {
	c := *l
	return &c
}

// CloneLots deep-copies lots, so that a speculative allocation can be run
// without touching the canonical ledger.
func CloneLots(lots []*TaxLot) []*TaxLot {
	cloned := make([]*TaxLot, 0, len(lots))
	for _, l := range lots {
		cloned = append(cloned, l.Clone())
	}
	return cloned
}

func OpenLots(lots []*TaxLot) []*TaxLot {
	open := make([]*TaxLot, 0, len(lots))
	for _, l := range lots {
		if l.IsOpen() {
			open = append(open, l)
		}
	}
	return open
}

func totalRemaining(lots []*TaxLot) (decimal.Decimal, decimal.Decimal) {
	quantity := decimal.Zero
	cost := decimal.Zero
	for _, l := range lots {
		if !l.IsOpen() {
			continue
		}
		quantity = quantity.Add(l.RemainingQuantity)
		cost = cost.Add(l.RemainingCost())
	}
	return quantity, cost
}

func FindLot(lots []*TaxLot, id uuid.UUID) *TaxLot {
	for _, l := range lots {
		if l.Id == id {
			return l
		}
	}
	return nil
}
