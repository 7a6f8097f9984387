package portfolio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tsiemens/lotbook/util"
)

// LotSelectionStrategy defines the order in which lots are consumed by a sale.
type LotSelectionStrategy int

const (
	// FIFO consumes the oldest lots first.
	FIFO LotSelectionStrategy = iota
	// LIFO consumes the newest lots first.
	LIFO
	// HIFO consumes the highest unit cost lots first. Among equal costs, the
	// oldest lot goes first.
	HIFO
	// SpecificId consumes exactly the lots named by the caller, in that order.
	SpecificId
)

func (s LotSelectionStrategy) String() string {
	switch s {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case HIFO:
		return "hifo"
	case SpecificId:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseLotSelectionStrategy parses a string into a LotSelectionStrategy.
func ParseLotSelectionStrategy(s string) (LotSelectionStrategy, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "hifo":
		return HIFO, nil
	case "specific", "specific-id", "specific_id":
		return SpecificId, nil
	default:
		return 0, fmt.Errorf("unknown lot selection strategy: %q", s)
	}
}

// orderLots returns the lots eligible for a sale, in consumption order.
// The input slice is never reordered.
func orderLots(lots []*TaxLot, strategy LotSelectionStrategy, ids []uuid.UUID) ([]*TaxLot, error) {
	if strategy == SpecificId {
		return lotsById(lots, ids)
	}
	if len(ids) > 0 {
		return nil, fmt.Errorf("%w: lot ids given for %s strategy", ErrInvalidSaleRequest, strategy)
	}

	ordered := OpenLots(lots)
	switch strategy {
	case FIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].PurchaseDate.Before(ordered[j].PurchaseDate)
		})
	case LIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].PurchaseDate.After(ordered[j].PurchaseDate)
		})
	case HIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			pi, pj := ordered[i].PurchasePrice(), ordered[j].PurchasePrice()
			if !pi.Equal(pj) {
				return pi.GreaterThan(pj)
			}
			return ordered[i].PurchaseDate.Before(ordered[j].PurchaseDate)
		})
	default:
		return nil, fmt.Errorf("%w: unknown strategy %d", ErrInvalidSaleRequest, int(strategy))
	}
	return ordered, nil
}

func lotsById(lots []*TaxLot, ids []uuid.UUID) ([]*TaxLot, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: specific identification requires at least one lot id",
			ErrInvalidSaleRequest)
	}
	seen := util.NewSet[uuid.UUID]()
	ordered := make([]*TaxLot, 0, len(ids))
	for _, id := range ids {
		if !seen.Add(id) {
			return nil, fmt.Errorf("%w: lot %s given more than once", ErrInvalidSaleRequest, id)
		}
		lot := FindLot(lots, id)
		if lot == nil {
			return nil, fmt.Errorf("%w: no lot with id %s", ErrInvalidSaleRequest, id)
		}
		ordered = append(ordered, lot)
	}
	return ordered, nil
}
