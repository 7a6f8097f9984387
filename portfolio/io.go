package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/log"
)

var CsvDateFormat string = date.DefaultFormat

type ColParser func(string, *Tx) error

var colParserMap = map[string]ColParser{
	"security":        parseSecurity,
	"date":            parseDate,
	"action":          parseAction,
	"shares":          parseShares,
	"amount/share":    parseAmountPerShare,
	"price":           parseAmountPerShare,
	"commission":      parseCommission,
	"fees":            parseCommission,
	"grant date":      parseGrantDate,
	"bargain element": parseBargainElement,
	"shares withheld": parseSharesWithheld,
	"split ratio":     parseSplitRatio,
	"memo":            parseMemo,
}

// Column order used when writing txs.
var ColNames = []string{
	"security", "date", "action", "shares", "amount/share", "commission",
	"grant date", "bargain element", "shares withheld", "split ratio", "memo",
}

func DefaultTx() *Tx {
	return &Tx{
		Security: "", Date: date.Date{}, Action: NO_ACTION,
		Shares: decimal.Zero, AmountPerShare: decimal.Zero, Commission: decimal.Zero,
		BargainElement: decimal.Zero, SharesWithheld: decimal.Zero, SplitRatio: decimal.Zero,
	}
}

func CheckTxSanity(tx *Tx) error {
	if tx.Security == "" {
		return fmt.Errorf("Transaction has no security")
	} else if tx.Date.IsZero() {
		return fmt.Errorf("Transaction has no date")
	} else if tx.Action == NO_ACTION {
		return fmt.Errorf("Transaction has no action")
	}
	return nil
}

// ParseTxCsv reads transactions from a CSV with a header row. desc names the
// source in errors.
func ParseTxCsv(reader io.Reader, desc string) ([]*Tx, error) {
	csvR := csv.NewReader(reader)
	csvR.TrimLeadingSpace = true
	records, err := csvR.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Failed to parse CSV %s: %v", desc, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("No rows found in %s", desc)
	}

	header := records[0]

	colParsers := make([]ColParser, len(header))

	for i, col := range header {
		sanCol := strings.TrimSpace(strings.ToLower(col))
		if parser, ok := colParserMap[sanCol]; ok {
			colParsers[i] = parser
		} else {
			log.Warnf("Unrecognized column %q in %s", sanCol, desc)
			colParsers[i] = parseNothing
		}
	}

	txs := make([]*Tx, 0, len(records)-1)
	for i, record := range records[1:] {
		tx := DefaultTx()
		tx.ReadIndex = uint32(i)
		for j, col := range record {
			err = colParsers[j](strings.TrimSpace(col), tx)
			if err != nil {
				return nil, fmt.Errorf("Error parsing %s at line:col %d:%d: %v", desc, i+1, j, err)
			}
		}
		err = CheckTxSanity(tx)
		if err != nil {
			return nil, fmt.Errorf("Error parsing %s at line %d: %v", desc, i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func parseNothing(data string, tx *Tx) error {
	return nil
}

func parseSecurity(data string, tx *Tx) error {
	tx.Security = data
	return nil
}

func parseDate(data string, tx *Tx) error {
	d, err := date.Parse(CsvDateFormat, data)
	if err != nil {
		return err
	}
	tx.Date = d
	return nil
}

func parseGrantDate(data string, tx *Tx) error {
	if data == "" {
		return nil
	}
	d, err := date.Parse(CsvDateFormat, data)
	if err != nil {
		return fmt.Errorf("Error parsing grant date: %v", err)
	}
	tx.GrantDate = d
	return nil
}

func ParseTxAction(data string) (TxAction, error) {
	switch strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(data, "_", " "))), " ") {
	case "buy":
		return BUY, nil
	case "sell":
		return SELL, nil
	case "espp", "espp purchase":
		return ESPP_PURCHASE, nil
	case "rsu", "rsu vest":
		return RSU_VEST, nil
	case "split":
		return SPLIT, nil
	case "transfer in":
		return TRANSFER_IN, nil
	case "transfer out":
		return TRANSFER_OUT, nil
	case "reinvest", "reinvestment":
		return REINVEST, nil
	}
	return NO_ACTION, fmt.Errorf("Invalid action: '%s'", data)
}

func parseAction(data string, tx *Tx) error {
	action, err := ParseTxAction(data)
	if err != nil {
		return err
	}
	tx.Action = action
	return nil
}

// Empty cells parse as zero.
func parseDecimal(data string, what string) (decimal.Decimal, error) {
	if data == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(data, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("Error parsing %s: %v", what, err)
	}
	return d, nil
}

func parseShares(data string, tx *Tx) (err error) {
	tx.Shares, err = parseDecimal(data, "# shares")
	return
}

func parseAmountPerShare(data string, tx *Tx) (err error) {
	tx.HasPrice = data != ""
	tx.AmountPerShare, err = parseDecimal(data, "price/share")
	return
}

func parseCommission(data string, tx *Tx) (err error) {
	tx.Commission, err = parseDecimal(data, "commission")
	return
}

func parseBargainElement(data string, tx *Tx) (err error) {
	tx.BargainElement, err = parseDecimal(data, "bargain element")
	return
}

func parseSharesWithheld(data string, tx *Tx) (err error) {
	tx.SharesWithheld, err = parseDecimal(data, "shares withheld")
	return
}

func parseSplitRatio(data string, tx *Tx) error {
	// Accept "2", "0.5" or "3:1" / "1:2" (new:old).
	if parts := strings.Split(data, ":"); len(parts) == 2 {
		newShares, err := parseDecimal(parts[0], "split ratio")
		if err != nil {
			return err
		}
		oldShares, err := parseDecimal(parts[1], "split ratio")
		if err != nil {
			return err
		}
		if oldShares.IsZero() {
			return fmt.Errorf("Error parsing split ratio: '%s' has a zero denominator", data)
		}
		tx.SplitRatio = newShares.Div(oldShares)
		return nil
	}
	var err error
	tx.SplitRatio, err = parseDecimal(data, "split ratio")
	return err
}

func parseMemo(data string, tx *Tx) error {
	tx.Memo = data
	return nil
}

func actionCsvName(a TxAction) string {
	return strings.ToLower(strings.ReplaceAll(a.String(), " ", "_"))
}

func decimalCell(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func priceCell(tx *Tx) string {
	if tx.HasPrice && tx.AmountPerShare.IsZero() {
		return "0"
	}
	return decimalCell(tx.AmountPerShare)
}

func dateCell(d date.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.UTCTime().Format(CsvDateFormat)
}

// WriteTxCsv writes txs in the format read by ParseTxCsv.
func WriteTxCsv(w io.Writer, txs []*Tx) error {
	csvW := csv.NewWriter(w)
	if err := csvW.Write(ColNames); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.Security, dateCell(tx.Date), actionCsvName(tx.Action),
			decimalCell(tx.Shares), priceCell(tx), decimalCell(tx.Commission),
			dateCell(tx.GrantDate), decimalCell(tx.BargainElement), decimalCell(tx.SharesWithheld),
			decimalCell(tx.SplitRatio), tx.Memo,
		}
		if err := csvW.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	csvW.Flush()
	return csvW.Error()
}
