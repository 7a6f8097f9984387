package portfolio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
)

type TxAction int

const (
	NO_ACTION TxAction = iota
	BUY
	SELL
	ESPP_PURCHASE
	RSU_VEST
	SPLIT
	TRANSFER_IN
	TRANSFER_OUT
	REINVEST
)

func (a TxAction) String() string {
	switch a {
	case NO_ACTION:
		return "invalid"
	case BUY:
		return "Buy"
	case SELL:
		return "Sell"
	case ESPP_PURCHASE:
		return "ESPP"
	case RSU_VEST:
		return "RSU Vest"
	case SPLIT:
		return "Split"
	case TRANSFER_IN:
		return "Transfer In"
	case TRANSFER_OUT:
		return "Transfer Out"
	case REINVEST:
		return "Reinvest"
	}
	return fmt.Sprintf("TxAction(%d)", int(a))
}

// Whether the action adds a new lot to the ledger.
func (a TxAction) IsAcquisition() bool {
	switch a {
	case BUY, ESPP_PURCHASE, RSU_VEST, TRANSFER_IN, REINVEST:
		return true
	}
	return false
}

type LotType int

const (
	STANDARD_LOT LotType = iota
	ESPP_LOT
	RSU_LOT
)

func (t LotType) String() string {
	switch t {
	case STANDARD_LOT:
		return "Standard"
	case ESPP_LOT:
		return "ESPP"
	case RSU_LOT:
		return "RSU"
	}
	return fmt.Sprintf("LotType(%d)", int(t))
}

type HoldingPeriod int

const (
	SHORT_TERM HoldingPeriod = iota
	LONG_TERM
)

func (p HoldingPeriod) String() string {
	if p == LONG_TERM {
		return "Long"
	}
	return "Short"
}

type Tx struct {
	Security       string
	Date           date.Date
	Action         TxAction
	Shares         decimal.Decimal
	AmountPerShare decimal.Decimal
	// Set when AmountPerShare was supplied, even as zero. Only TRANSFER_IN
	// distinguishes a missing price.
	HasPrice       bool
	Commission     decimal.Decimal

	// ESPP_PURCHASE only. BargainElement is per share.
	GrantDate      date.Date
	BargainElement decimal.Decimal

	// RSU_VEST only. Shares is the gross vest; withheld shares never become a lot.
	SharesWithheld decimal.Decimal

	// SPLIT only. New shares per old share.
	SplitRatio decimal.Decimal

	Memo string

	// The order in which the Tx was read from its source.
	ReadIndex uint32
}

func (tx *Tx) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s", tx.Date, tx.Security, tx.Action, tx.Shares, tx.AmountPerShare)
}

type txSorter struct {
	Txs []*Tx
}

func (s *txSorter) Len() int {
	return len(s.Txs)
}

func (s *txSorter) Swap(i, j int) {
	s.Txs[i], s.Txs[j] = s.Txs[j], s.Txs[i]
}

func (s *txSorter) Less(i, j int) bool {
	return s.Txs[i].Date.Before(s.Txs[j].Date)
}

// SortTxs sorts by date. Txs on the same date keep their relative order.
func SortTxs(txs []*Tx) []*Tx {
	sorted := make([]*Tx, len(txs))
	copy(sorted, txs)
	sort.Stable(&txSorter{Txs: sorted})
	return sorted
}

func SplitTxsBySecurity(txs []*Tx) map[string][]*Tx {
	txsBySec := make(map[string][]*Tx)
	for _, tx := range txs {
		secTxs, ok := txsBySec[tx.Security]
		if !ok {
			secTxs = make([]*Tx, 0, 8)
		}
		secTxs = append(secTxs, tx)
		txsBySec[tx.Security] = secTxs
	}
	return txsBySec
}
