package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
)

var (
	ErrInvalidTx          = errors.New("invalid transaction")
	ErrUnknownTxAction    = errors.New("unknown transaction action")
	ErrInsufficientLots   = errors.New("insufficient lots")
	ErrInvalidSaleRequest = errors.New("invalid sale request")
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrInvalidPrice       = errors.New("invalid price")
)

// InsufficientLotsError is returned when a sale asks for more shares than the
// eligible lots hold. No lot is modified when this is returned.
type InsufficientLotsError struct {
	Security  string
	Date      date.Date
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf(
		"%v: sale on %v of %s shares of %s is more than the open lots hold (%s)",
		ErrInsufficientLots, e.Date, e.Requested, e.Security, e.Available)
}

func (e *InsufficientLotsError) Is(target error) bool {
	return target == ErrInsufficientLots
}
