package portfolio_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tsiemens/lotbook/date"
	ptf "github.com/tsiemens/lotbook/portfolio"
	"github.com/tsiemens/lotbook/util"
)

var DInt = decimal.NewFromInt
var DStr = decimal.RequireFromString

const DefaultTestSecurity string = "FOO"

func init() {
	util.AssertsPanic = true
}

func mkDateYD(year uint32, day int) date.Date {
	tm := date.New(year, time.January, 1)
	return tm.AddDays(day)
}

func mkDate(day int) date.Date {
	return mkDateYD(2017, day)
}

// Test Tx
type TTx struct {
	Sec      string
	Day      int       // An abitrarily offset day. Convenience for Date
	Date     date.Date // Used if Day is 0
	Act      ptf.TxAction
	Shares   decimal.Decimal
	Price    decimal.Decimal
	HasPrice bool // Price is supplied even when zero
	Comm     decimal.Decimal
	Grant    date.Date
	Bargain  decimal.Decimal
	Withheld decimal.Decimal
	Ratio    decimal.Decimal
	Memo     string
}

// eXpand to full type.
func (t TTx) X() *ptf.Tx {
	if t.Day != 0 {
		util.Assert(t.Date == date.Date{})
	}
	return &ptf.Tx{
		Security:       util.Tern(t.Sec == "", DefaultTestSecurity, t.Sec),
		Date:           util.Tern(t.Day != 0, mkDate(t.Day), t.Date),
		Action:         t.Act,
		Shares:         t.Shares,
		AmountPerShare: t.Price,
		HasPrice:       t.HasPrice || !t.Price.IsZero(),
		Commission:     t.Comm,
		GrantDate:      t.Grant,
		BargainElement: t.Bargain,
		SharesWithheld: t.Withheld,
		SplitRatio:     t.Ratio,
		Memo:           t.Memo,
	}
}

func buildLedger(rq *require.Assertions, strategy ptf.LotSelectionStrategy, txs ...*ptf.Tx) *ptf.Ledger {
	l, err := ptf.BuildLedger(txs, strategy)
	rq.NoError(err)
	rq.NotNil(l)
	return l
}

func remainingQuantities(lots []*ptf.TaxLot) []string {
	qs := make([]string, 0, len(lots))
	for _, l := range lots {
		qs = append(qs, l.RemainingQuantity.String())
	}
	return qs
}

func decimalComparer(a, b decimal.Decimal) bool {
	return a.Equal(b)
}

// regex can be pattern string or Regexp
func RqPanicsWithRegexp(t *testing.T, regex interface{}, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			require.Regexp(t, regex, r)
		} else {
			require.FailNow(t, "Function did not panic")
		}
	}()
	fn()
}

// Use this class instead of require.New if any type needing comparison has
// an Equal method (Decimal for example)
type CustomRequire struct {
	t       *testing.T
	options cmp.Options
}

func NewCustomRequire(t *testing.T) *CustomRequire {
	return &CustomRequire{t, []cmp.Option{
		cmp.Comparer(decimalComparer),
	}}
}

func (rq *CustomRequire) PanicsWithRegexp(regex interface{}, fn func()) {
	RqPanicsWithRegexp(rq.t, regex, fn)
}

func (rq *CustomRequire) Equal(expected, actual interface{}) {
	diff := cmp.Diff(expected, actual, rq.options)
	require.True(rq.t, diff == "", diff)
}

func (rq *CustomRequire) DecEqual(expected string, actual decimal.Decimal) {
	require.True(rq.t, DStr(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func (rq *CustomRequire) LinesEqual(expected, actual string) {
	expLines := strings.Split(expected, "\n")
	actLines := strings.Split(actual, "\n")
	diff := cmp.Diff(expLines, actLines, rq.options)
	require.True(rq.t, diff == "", diff)
}
