package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/util"
)

// SaleRecord is a replayed SELL or TRANSFER_OUT and the lots it drew from.
type SaleRecord struct {
	Tx          *Tx
	Allocations []SaleAllocation
	Totals      AllocationTotals
}

// Ledger holds every lot of a single security, in acquisition order.
type Ledger struct {
	Security string
	Strategy LotSelectionStrategy

	// All lots, including depleted ones, for realized gain history.
	Lots         []*TaxLot
	Sales        []*SaleRecord
	TransfersOut []*SaleRecord

	// Derived from Lots after every applied Tx.
	Holding  *Holding
	OpenLots []*TaxLot

	lastDate date.Date
}

func NewLedger(security string, strategy LotSelectionStrategy) (*Ledger, error) {
	if strategy == SpecificId {
		return nil, fmt.Errorf("%w: ledger replay needs an ordering strategy, not %s",
			ErrInvalidSaleRequest, strategy)
	}
	l := &Ledger{Security: security, Strategy: strategy}
	l.refresh()
	return l, nil
}

// BuildLedger replays txs for one security. The txs may be in any order; they
// are sorted by date, and txs on the same date keep their given order.
//
// On error, the ledger as of the last successfully applied Tx is returned with
// the error.
func BuildLedger(txs []*Tx, strategy LotSelectionStrategy) (*Ledger, error) {
	security := ""
	if len(txs) > 0 {
		security = txs[0].Security
	}
	l, err := NewLedger(security, strategy)
	if err != nil {
		return nil, err
	}
	for _, tx := range SortTxs(txs) {
		if err := l.Apply(tx); err != nil {
			// Return what we've managed so far, for debugging
			return l, err
		}
	}
	return l, nil
}

// BuildLedgers replays a mixed list of txs into one ledger per security.
// Securities are replayed in name order, stopping at the first error.
func BuildLedgers(txs []*Tx, strategy LotSelectionStrategy) (map[string]*Ledger, error) {
	ledgers := make(map[string]*Ledger)
	txsBySec := SplitTxsBySecurity(txs)
	for _, sec := range util.SortedStringKeys(txsBySec) {
		l, err := BuildLedger(txsBySec[sec], strategy)
		if l != nil {
			ledgers[sec] = l
		}
		if err != nil {
			return ledgers, err
		}
	}
	return ledgers, nil
}

func (l *Ledger) refresh() {
	l.OpenLots = OpenLots(l.Lots)
	l.Holding = NewHolding(l.Security, l.Lots)
}

func (l *Ledger) checkTxSanity(tx *Tx) error {
	sanityCheckError := func(fmtStr string, v ...interface{}) error {
		return fmt.Errorf(
			"%w: in %s transaction on %v of %s shares of %s, "+fmtStr,
			append([]interface{}{ErrInvalidTx, tx.Action, tx.Date, tx.Shares, tx.Security}, v...)...)
	}

	if tx.Security == "" {
		return sanityCheckError("there is no security")
	} else if tx.Security != l.Security {
		return sanityCheckError("the security does not match the ledger (%s)", l.Security)
	} else if tx.Date.IsZero() {
		return sanityCheckError("there is no date")
	} else if tx.Date.Before(l.lastDate) {
		return sanityCheckError("the date is before the last applied transaction (%v)", l.lastDate)
	} else if tx.Shares.IsNegative() {
		return sanityCheckError("the share count is negative")
	} else if tx.AmountPerShare.IsNegative() {
		return sanityCheckError("the price is negative")
	} else if tx.Commission.IsNegative() {
		return sanityCheckError("the commission is negative")
	}

	switch tx.Action {
	case BUY, SELL, ESPP_PURCHASE, RSU_VEST, TRANSFER_IN, TRANSFER_OUT, REINVEST:
		if !tx.Shares.IsPositive() {
			return sanityCheckError("the share count must be positive")
		}
	}

	switch tx.Action {
	case ESPP_PURCHASE:
		if tx.GrantDate.IsZero() {
			return sanityCheckError("the ESPP purchase has no grant date")
		} else if tx.GrantDate.After(tx.Date) {
			return sanityCheckError("the grant date (%v) is after the purchase", tx.GrantDate)
		} else if tx.BargainElement.IsNegative() {
			return sanityCheckError("the bargain element is negative")
		}
	case RSU_VEST:
		if tx.SharesWithheld.IsNegative() {
			return sanityCheckError("the withheld share count is negative")
		} else if tx.SharesWithheld.GreaterThan(tx.Shares) {
			return sanityCheckError("more shares withheld (%s) than vested", tx.SharesWithheld)
		}
	case SPLIT:
		if !tx.SplitRatio.IsPositive() {
			return sanityCheckError("the split ratio (%s) must be positive", tx.SplitRatio)
		}
	}
	return nil
}

// Apply replays a single Tx onto the ledger. Txs must be applied in date
// order. This is also how a real sale is committed after being previewed.
func (l *Ledger) Apply(tx *Tx) error {
	if err := l.checkTxSanity(tx); err != nil {
		return err
	}

	switch tx.Action {
	case BUY, REINVEST:
		l.addLot(tx, STANDARD_LOT, tx.Shares, tx.Shares.Mul(tx.AmountPerShare).Add(tx.Commission))
	case ESPP_PURCHASE:
		lot := l.addLot(tx, ESPP_LOT, tx.Shares, tx.Shares.Mul(tx.AmountPerShare).Add(tx.Commission))
		lot.GrantDate = tx.GrantDate
		lot.BargainElement = tx.BargainElement
	case RSU_VEST:
		netShares := tx.Shares.Sub(tx.SharesWithheld)
		if netShares.IsZero() {
			// Everything went to tax withholding.
			break
		}
		lot := l.addLot(tx, RSU_LOT, netShares, netShares.Mul(tx.AmountPerShare).Add(tx.Commission))
		lot.VestingDate = tx.Date
		lot.VestingPrice = tx.AmountPerShare
	case TRANSFER_IN:
		var cost decimal.Decimal
		if tx.HasPrice || tx.AmountPerShare.IsPositive() {
			cost = tx.Shares.Mul(tx.AmountPerShare)
		} else {
			// No price given: carry the holding's current average cost, which
			// is zero (basis-less) when nothing is held.
			openQty, openCost := totalRemaining(l.Lots)
			cost = decimal.Zero
			if openQty.IsPositive() {
				cost = openCost.Mul(tx.Shares).Div(openQty)
			}
		}
		l.addLot(tx, STANDARD_LOT, tx.Shares, cost.Add(tx.Commission))
	case SELL:
		allocs, err := AllocateSale(l.Lots, l.saleRequest(tx))
		if err != nil {
			return err
		}
		l.Sales = append(l.Sales, &SaleRecord{Tx: tx, Allocations: allocs, Totals: SumAllocations(allocs)})
	case TRANSFER_OUT:
		allocs, err := allocate(l.Lots, l.saleRequest(tx), false)
		if err != nil {
			return err
		}
		l.TransfersOut = append(l.TransfersOut,
			&SaleRecord{Tx: tx, Allocations: allocs, Totals: SumAllocations(allocs)})
	case SPLIT:
		for _, lot := range l.Lots {
			if lot.IsOpen() {
				lot.applySplit(tx.SplitRatio)
			}
		}
	default:
		return fmt.Errorf("%w: %s on %v for %s", ErrUnknownTxAction, tx.Action, tx.Date, tx.Security)
	}

	l.lastDate = tx.Date
	l.refresh()
	return nil
}

func (l *Ledger) saleRequest(tx *Tx) SaleRequest {
	return SaleRequest{
		Security:   tx.Security,
		Quantity:   tx.Shares,
		Price:      tx.AmountPerShare,
		Commission: tx.Commission,
		Date:       tx.Date,
		Strategy:   l.Strategy,
	}
}

func (l *Ledger) addLot(tx *Tx, lotType LotType, quantity decimal.Decimal, totalCost decimal.Decimal) *TaxLot {
	lot := newTaxLot(NewLotId(l.Security, len(l.Lots), tx.Date), l.Security, lotType, tx.Date,
		quantity, totalCost)
	l.Lots = append(l.Lots, lot)
	return lot
}

// PreviewSale previews a sale against this ledger's lots without changing
// them.
func (l *Ledger) PreviewSale(req SaleRequest) (*SalePreview, error) {
	if req.Security == "" {
		req.Security = l.Security
	}
	return PreviewSale(l.Lots, req)
}
