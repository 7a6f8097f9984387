package portfolio

import "github.com/shopspring/decimal"

// Decimal places kept in a summary tx's price. The remainder of the lot's cost
// is carried in the commission, so replay reproduces the cost exactly.
const summaryPricePlaces = 8

func summaryPrice(cost, quantity decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	price := cost.Div(quantity).Truncate(summaryPricePlaces)
	return price, cost.Sub(price.Mul(quantity))
}

// MakeSummaryTxs returns txs which recreate the open lots of l, one per lot,
// dated at the lot's acquisition so holding periods are preserved. Replaying
// them yields the same open quantities and cost basis, without the history of
// sales and splits that produced them.
//
// ESPP and RSU lots are summarized as ESPP purchases and RSU vests, so their
// disposition attributes survive.
func MakeSummaryTxs(l *Ledger) []*Tx {
	summaryTxs := make([]*Tx, 0, len(l.OpenLots))
	for i, lot := range l.OpenLots {
		price, residual := summaryPrice(lot.RemainingCost(), lot.RemainingQuantity)
		tx := &Tx{
			Security:       l.Security,
			Date:           lot.PurchaseDate,
			Action:         BUY,
			Shares:         lot.RemainingQuantity,
			AmountPerShare: price,
			Commission:     residual,
			Memo:           "Summary",
			ReadIndex:      uint32(i),
		}
		switch lot.Type {
		case ESPP_LOT:
			tx.Action = ESPP_PURCHASE
			tx.GrantDate = lot.GrantDate
			tx.BargainElement = lot.BargainElement
		case RSU_LOT:
			tx.Action = RSU_VEST
		}
		summaryTxs = append(summaryTxs, tx)
	}
	return summaryTxs
}
