package portfolio

import (
	"fmt"
	"io"
	"os"
	"strings"

	money "github.com/Rhymond/go-money"
	tw "github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	decimal_opt "github.com/tsiemens/lotbook/decimal_value"
	"github.com/tsiemens/lotbook/util"
)

type _PrintHelper struct {
	PrintAllDecimals bool
}

var displayNanEnvSetting util.Optional[string]

func NaNString() string {
	if !displayNanEnvSetting.Present() {
		displayNanEnvSetting.Set(os.Getenv("DISPLAY_NAN"))
	}
	if displayNanEnvSetting.MustGet() == "" || displayNanEnvSetting.MustGet() == "0" {
		return "-"
	}
	return "NaN"
}

// DollarStr renders val with a currency symbol and thousands separators,
// rounded to cents unless PrintAllDecimals is set.
func (h _PrintHelper) DollarStr(val decimal.Decimal) string {
	if h.PrintAllDecimals {
		if val.IsNegative() {
			return "-$" + val.Neg().String()
		}
		return "$" + val.String()
	}
	return money.New(val.Round(2).Shift(2).IntPart(), money.USD).Display()
}

func (h _PrintHelper) OptDollarStr(val decimal_opt.DecimalOpt) string {
	if val.IsNull {
		return NaNString()
	}
	return h.DollarStr(val.Decimal)
}

func (h _PrintHelper) PlusMinusDollar(val decimal.Decimal, showPlus bool) string {
	if showPlus && val.IsPositive() {
		return "+" + h.DollarStr(val)
	}
	return h.DollarStr(val)
}

func (h _PrintHelper) PercentStr(val decimal.Decimal) string {
	if h.PrintAllDecimals {
		return val.String() + "%"
	}
	return val.StringFixed(2) + "%"
}

func strOrDash(useStr bool, str string) string {
	if useStr {
		return str
	}
	return "-"
}

type RenderTable struct {
	Header []string
	Rows   [][]string
	Footer []string
	Notes  []string
	Errors []error
}

func yearTotalsFooter(gains *CumulativeRealizedGains, ph _PrintHelper) (string, string) {
	years := gains.RealizedGainsYearTotalsKeysSorted()
	yearStrs := []string{}
	yearValsStrs := []string{}
	for _, year := range years {
		yearStrs = append(yearStrs, fmt.Sprintf("%d", year))
		yearValsStrs = append(yearValsStrs, ph.PlusMinusDollar(gains.RealizedGainsYearTotals[year].Total, false))
	}
	label := "Total"
	vals := ph.PlusMinusDollar(gains.RealizedGainsTotal.Total, false)
	if len(years) > 0 {
		label += "\n" + strings.Join(yearStrs, "\n")
		vals += "\n" + strings.Join(yearValsStrs, "\n")
	}
	return label, vals
}

// RenderTxTableModel renders one row per lot drawn from by the ledger's sales
// and transfers out, in date order.
func RenderTxTableModel(l *Ledger, gains *CumulativeRealizedGains, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Security", "Date", "TX", "Shares", "Amt/Share", "Lot", "Acquired",
		"Lot Shares", "Cost Basis", "Commission", "Proceeds", "Gain", "Term", "Memo",
	}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	records := make([]*SaleRecord, 0, len(l.Sales)+len(l.TransfersOut))
	records = append(records, l.Sales...)
	records = append(records, l.TransfersOut...)
	sortSaleRecords(records)

	sawTransfer := false
	for _, rec := range records {
		tx := rec.Tx
		isSale := tx.Action == SELL
		sawTransfer = sawTransfer || !isSale
		for i, a := range rec.Allocations {
			first := i == 0
			row := []string{
				util.Tern(first, tx.Security, ""),
				util.Tern(first, tx.Date.String(), ""),
				util.Tern(first, tx.Action.String(), ""),
				util.Tern(first, tx.Shares.String(), ""),
				util.Tern(first, strOrDash(isSale, ph.DollarStr(tx.AmountPerShare)), ""),
				a.LotId.String(),
				a.AcquisitionDate.String(),
				a.Quantity.String(),
				ph.DollarStr(a.CostBasis),
				strOrDash(!a.Commission.IsZero(), ph.DollarStr(a.Commission)),
				strOrDash(isSale, ph.DollarStr(a.Proceeds)),
				strOrDash(isSale, ph.PlusMinusDollar(a.RealizedGain, false)),
				a.HoldingPeriod.String(),
				util.Tern(first, tx.Memo, ""),
			}
			table.Rows = append(table.Rows, row)
		}
	}

	label, vals := yearTotalsFooter(gains, ph)
	table.Footer = []string{"", "", "", "", "", "", "", "", "", "", label, vals, "", ""}

	if sawTransfer {
		table.Notes = append(table.Notes, " Transfers out carry their cost basis away and realize no gain.")
	}
	return table
}

func sortSaleRecords(records []*SaleRecord) {
	txs := make([]*Tx, len(records))
	byTx := make(map[*Tx]*SaleRecord, len(records))
	for i, r := range records {
		txs[i] = r.Tx
		byTx[r.Tx] = r
	}
	for i, tx := range SortTxs(txs) {
		records[i] = byTx[tx]
	}
}

// RenderOpenLotsTable renders the ledger's open lots. If valuation is non-nil,
// market value and unrealized gain columns are included.
func RenderOpenLotsTable(l *Ledger, valuation *UnrealizedSummary, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Lot", "Type", "Acquired", "Shares", "Sold", "Remaining", "Cost/Share",
		"Cost Basis"}
	if valuation != nil {
		table.Header = append(table.Header, "Market Value", "Unrealized Gain", "Term")
	}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	valuations := map[*TaxLot]LotValuation{}
	if valuation != nil {
		for _, v := range valuation.Lots {
			valuations[v.Lot] = v
		}
	}

	for _, lot := range l.OpenLots {
		row := []string{
			lot.Id.String(),
			lot.Type.String(),
			lot.PurchaseDate.String(),
			lot.Quantity.String(),
			lot.SoldQuantity.String(),
			lot.RemainingQuantity.String(),
			ph.DollarStr(lot.PurchasePrice()),
			ph.DollarStr(lot.RemainingCost()),
		}
		if valuation != nil {
			v := valuations[lot]
			row = append(row,
				ph.DollarStr(v.MarketValue),
				fmt.Sprintf("%s (%s)", ph.PlusMinusDollar(v.UnrealizedGain, true),
					ph.PercentStr(v.UnrealizedGainPercent)),
				v.HoldingPeriod.String(),
			)
		}
		table.Rows = append(table.Rows, row)
	}

	h := l.Holding
	table.Footer = []string{"Total", "", "", "", "", h.Quantity.String(),
		ph.OptDollarStr(h.AverageCost), ph.DollarStr(h.CostBasis)}
	if valuation != nil {
		table.Footer = append(table.Footer,
			ph.DollarStr(valuation.MarketValue),
			fmt.Sprintf("%s (%s)", ph.PlusMinusDollar(valuation.UnrealizedGain(), true),
				ph.PercentStr(valuation.UnrealizedGainPercent())),
			"")
	}
	return table
}

/*
Generates a RenderTable that will render out to this:
| Year             | Short Term | Long Term | Realized Gains |
+------------------+------------+-----------+----------------+
| 2000             | xxxx.xx    | xxxx.xx   | xxxx.xx        |
| 2001             | xxxx.xx    | xxxx.xx   | xxxx.xx        |
| Since inception  | xxxx.xx    | xxxx.xx   | xxxx.xx        |
*/
func RenderAggregateRealizedGains(
	gains *CumulativeRealizedGains, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = []string{"Year", "Short Term", "Long Term", "Realized Gains"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	row := func(label string, t RealizedGainTotals) []string {
		return []string{label, ph.PlusMinusDollar(t.ShortTerm, false),
			ph.PlusMinusDollar(t.LongTerm, false), ph.PlusMinusDollar(t.Total, false)}
	}

	for _, year := range gains.RealizedGainsYearTotalsKeysSorted() {
		table.Rows = append(table.Rows, row(fmt.Sprintf("%d", year), gains.RealizedGainsYearTotals[year]))
	}
	table.Rows = append(table.Rows, row("Since inception", gains.RealizedGainsTotal))

	return table
}

// TaxEstimateRow is one line of a tax estimate table, usually one security.
type TaxEstimateRow struct {
	Label    string
	Summary  *UnrealizedSummary
	Estimate TaxEstimate
}

func RenderTaxEstimateTable(rows []TaxEstimateRow, settings TaxSettings, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Security", "Price", "Shares", "Market Value", "Cost Basis",
		"Short Term Gain", "Long Term Gain", "Short Term Tax", "Long Term Tax", "Est. Liability"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	total := TaxEstimate{}
	marketValue := decimal.Zero
	costBasis := decimal.Zero
	for _, r := range rows {
		e := r.Estimate
		table.Rows = append(table.Rows, []string{
			r.Label,
			ph.DollarStr(r.Summary.Price),
			r.Summary.Quantity.String(),
			ph.DollarStr(r.Summary.MarketValue),
			ph.DollarStr(r.Summary.CostBasis),
			ph.PlusMinusDollar(e.ShortTermGain, false),
			ph.PlusMinusDollar(e.LongTermGain, false),
			ph.DollarStr(e.ShortTermTax),
			ph.DollarStr(e.LongTermTax),
			ph.DollarStr(e.EstimatedLiability),
		})
		marketValue = marketValue.Add(r.Summary.MarketValue)
		costBasis = costBasis.Add(r.Summary.CostBasis)
		total.ShortTermTax = total.ShortTermTax.Add(e.ShortTermTax)
		total.LongTermTax = total.LongTermTax.Add(e.LongTermTax)
		total.EstimatedLiability = total.EstimatedLiability.Add(e.EstimatedLiability)
	}

	table.Footer = []string{"Total", "", "", ph.DollarStr(marketValue), ph.DollarStr(costBasis), "", "",
		ph.DollarStr(total.ShortTermTax), ph.DollarStr(total.LongTermTax),
		ph.DollarStr(total.EstimatedLiability)}

	table.Notes = append(table.Notes, fmt.Sprintf(
		" Rates: short term %s%%, long term %s%%. Losses are not offset against gains.",
		settings.ShortTermRate.Shift(2), settings.LongTermRate.Shift(2)))
	return table
}

/*
Generates a RenderTable that will render out to this:
|                 | Gain    | Rate | Tax     |
+-----------------+---------+------+---------+
| Short term      | xxxx.xx | 37%  | xxxx.xx |
| Long term       | xxxx.xx | 20%  | xxxx.xx |
| Est. liability  |         |      | xxxx.xx |
*/
func RenderRealizedTaxTable(estimate TaxEstimate, settings TaxSettings, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"", "Gain", "Rate", "Tax"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	table.Rows = [][]string{
		{"Short term", ph.PlusMinusDollar(estimate.ShortTermGain, false),
			settings.ShortTermRate.Shift(2).String() + "%", ph.DollarStr(estimate.ShortTermTax)},
		{"Long term", ph.PlusMinusDollar(estimate.LongTermGain, false),
			settings.LongTermRate.Shift(2).String() + "%", ph.DollarStr(estimate.LongTermTax)},
	}
	table.Footer = []string{"Est. liability", "", "", ph.DollarStr(estimate.EstimatedLiability)}
	return table
}

// RenderSalePreviewTable renders the allocations of a previewed sale, with the
// disposition of any ESPP lots it draws from.
func RenderSalePreviewTable(
	preview *SalePreview, dispositions []DispositionResult, renderFullDollarValues bool) *RenderTable {

	table := &RenderTable{}
	table.Header = []string{"Lot", "Type", "Acquired", "Shares", "Cost Basis", "Commission", "Proceeds",
		"Gain", "Term", "Disposition", "Ordinary Income"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	byLot := map[string]DispositionResult{}
	for _, d := range dispositions {
		byLot[d.LotId.String()] = d
	}

	sawDisqualifying := false
	for _, a := range preview.Allocations {
		disposition := "-"
		income := "-"
		if d, ok := byLot[a.LotId.String()]; ok && d.Applicable {
			if d.Disqualifying {
				sawDisqualifying = true
				disposition = fmt.Sprintf("Disqualifying *\n(qualifies %s)", d.QualifyingDate)
				income = ph.DollarStr(d.OrdinaryIncome)
			} else {
				disposition = "Qualifying"
				income = ph.DollarStr(d.OrdinaryIncome)
			}
		}
		table.Rows = append(table.Rows, []string{
			a.LotId.String(),
			a.LotType.String(),
			a.AcquisitionDate.String(),
			a.Quantity.String(),
			ph.DollarStr(a.CostBasis),
			strOrDash(!a.Commission.IsZero(), ph.DollarStr(a.Commission)),
			ph.DollarStr(a.Proceeds),
			ph.PlusMinusDollar(a.RealizedGain, false),
			a.HoldingPeriod.String(),
			disposition,
			income,
		})
	}

	t := preview.Totals
	table.Footer = []string{"Total", "", "", t.Quantity.String(), ph.DollarStr(t.CostBasis), "",
		ph.DollarStr(t.Proceeds),
		fmt.Sprintf("%s\nShort %s\nLong %s", ph.PlusMinusDollar(t.RealizedGain, false),
			ph.PlusMinusDollar(t.ShortTermGain, false), ph.PlusMinusDollar(t.LongTermGain, false)),
		"", "", ""}

	if sawDisqualifying {
		table.Notes = append(table.Notes,
			" * The bargain element of disqualifying ESPP shares is ordinary income. "+
				"Their capital gain is measured from the adjusted basis.")
	}
	return table
}

func RenderAgingLotsTable(aging []AgingLot, renderFullDollarValues bool) *RenderTable {
	table := &RenderTable{}
	table.Header = []string{"Security", "Lot", "Acquired", "Remaining", "Cost Basis", "Long Term On",
		"Days Left"}

	ph := _PrintHelper{PrintAllDecimals: renderFullDollarValues}

	for _, a := range aging {
		table.Rows = append(table.Rows, []string{
			a.Lot.Security,
			a.Lot.Id.String(),
			a.Lot.PurchaseDate.String(),
			a.Lot.RemainingQuantity.String(),
			ph.DollarStr(a.Lot.RemainingCost()),
			a.LongTermDate.String(),
			fmt.Sprintf("%d", a.DaysUntilLongTerm),
		})
	}
	return table
}

func PrintRenderTable(title string, tableModel *RenderTable, writer io.Writer) {
	for _, err := range tableModel.Errors {
		fmt.Fprintf(writer, "[!] %v. Printing parsed information state:\n", err)
	}
	fmt.Fprintf(writer, "%s\n", title)

	table := tw.NewWriter(writer)
	table.SetHeader(tableModel.Header)
	table.SetBorder(false)
	table.SetRowLine(true)

	for _, row := range tableModel.Rows {
		table.Append(row)
	}

	table.SetFooter(tableModel.Footer)

	table.Render()

	for _, note := range tableModel.Notes {
		fmt.Fprintln(writer, note)
	}
}
