package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/app/outfmt"
	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/log"
	ptf "github.com/tsiemens/lotbook/portfolio"
	"github.com/tsiemens/lotbook/util"
)

const LotbookVersion = "0.1.0"

type DescribedReader struct {
	Desc   string
	Reader io.Reader
}

type Options struct {
	Strategy         ptf.LotSelectionStrategy
	RenderFullValues bool
}

/* Takes a list of security price strings, each formatted as:
 * SYM:price. Eg. GOOG:135.20
 */
func ParsePrices(priceOpts []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for _, opt := range priceOpts {
		parts := strings.Split(opt, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("Invalid price format '%s'", opt)
		}
		symbol := strings.TrimSpace(parts[0])
		price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("Invalid price format '%s'. %v", opt, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("Invalid price '%s': %w", opt, ptf.ErrInvalidPrice)
		}

		if _, ok := prices[symbol]; ok {
			return nil, fmt.Errorf("Symbol %s specified multiple times", symbol)
		}
		prices[symbol] = price
	}
	return prices, nil
}

func readTxs(csvFileReaders []DescribedReader) ([]*ptf.Tx, error) {
	allTxs := make([]*ptf.Tx, 0, 20)
	var globalReadIndex uint32 = 0
	for _, csvReader := range csvFileReaders {
		txs, err := ptf.ParseTxCsv(csvReader.Reader, csvReader.Desc)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			// Keep same-day txs in read order across files.
			tx.ReadIndex = globalReadIndex
			globalReadIndex++
			allTxs = append(allTxs, tx)
		}
	}
	return allTxs, nil
}

// Ledgers holds one replayed ledger per security. A security whose replay
// failed still has the ledger as of its last good tx, with the error in
// Errors.
type Ledgers struct {
	BySecurity map[string]*ptf.Ledger
	Errors     map[string]error
}

func (l *Ledgers) Securities() []string {
	return util.SortedStringKeys(l.BySecurity)
}

// Err returns the first replay error, by security name.
func (l *Ledgers) Err() error {
	for _, sec := range l.Securities() {
		if err, ok := l.Errors[sec]; ok {
			return err
		}
	}
	return nil
}

func (l *Ledgers) AllLots() []*ptf.TaxLot {
	lots := []*ptf.TaxLot{}
	for _, sec := range l.Securities() {
		lots = append(lots, l.BySecurity[sec].Lots...)
	}
	return lots
}

// LoadLedgers parses every CSV, then replays each security independently.
// A parse error is fatal; replay errors are kept per security.
func LoadLedgers(csvFileReaders []DescribedReader, strategy ptf.LotSelectionStrategy) (*Ledgers, error) {
	allTxs, err := readTxs(csvFileReaders)
	if err != nil {
		return nil, err
	}

	ledgers := &Ledgers{BySecurity: map[string]*ptf.Ledger{}, Errors: map[string]error{}}
	for sec, secTxs := range ptf.SplitTxsBySecurity(allTxs) {
		log.Tracef("app", "replaying %d txs for %s", len(secTxs), sec)
		ledger, err := ptf.BuildLedger(secTxs, strategy)
		if ledger == nil {
			return nil, err
		}
		ledgers.BySecurity[sec] = ledger
		if err != nil {
			ledgers.Errors[sec] = err
		}
	}
	return ledgers, nil
}

type AppRenderResult struct {
	SecurityTables      map[string]*ptf.RenderTable
	OpenLotsTables      map[string]*ptf.RenderTable
	AggregateGainsTable *ptf.RenderTable
}

func RunLotAppToRenderModel(
	csvFileReaders []DescribedReader,
	options Options,
	errPrinter log.ErrorPrinter) (*AppRenderResult, error) {

	ledgers, err := LoadLedgers(csvFileReaders, options.Strategy)
	if err != nil {
		return nil, err
	}

	secModels := make(map[string]*ptf.RenderTable)
	lotModels := make(map[string]*ptf.RenderTable)
	secGains := make(map[string]*ptf.CumulativeRealizedGains)

	for sec, ledger := range ledgers.BySecurity {
		gains := ptf.CalcSecurityCumulativeRealizedGains(ledger.Sales)
		secGains[sec] = gains

		tableModel := ptf.RenderTxTableModel(ledger, gains, options.RenderFullValues)
		if err, ok := ledgers.Errors[sec]; ok {
			tableModel.Errors = append(tableModel.Errors, err)
		}
		secModels[sec] = tableModel
		lotModels[sec] = ptf.RenderOpenLotsTable(ledger, nil, options.RenderFullValues)
	}

	gains := ptf.CalcCumulativeRealizedGains(secGains)
	return &AppRenderResult{
		SecurityTables:      secModels,
		OpenLotsTables:      lotModels,
		AggregateGainsTable: ptf.RenderAggregateRealizedGains(gains, options.RenderFullValues),
	}, nil
}

// RunLotAppToWriter replays the transactions and writes the per-security sale
// and open lot tables, then the aggregate gains. Returns false if anything
// failed.
func RunLotAppToWriter(
	writer outfmt.ReportWriter,
	csvFileReaders []DescribedReader,
	options Options,
	errPrinter log.ErrorPrinter) (bool, *AppRenderResult) {

	renderRes, err := RunLotAppToRenderModel(csvFileReaders, options, errPrinter)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return false, nil
	}

	success := true
	for _, sec := range util.SortedStringKeys(renderRes.SecurityTables) {
		secTable := renderRes.SecurityTables[sec]
		if len(secTable.Errors) > 0 {
			success = false
		}
		if err := writer.PrintRenderTable(outfmt.Transactions, sec, secTable); err != nil {
			errPrinter.F("Error printing sales for %s: %v\n", sec, err)
			success = false
		}
		if err := writer.PrintRenderTable(outfmt.OpenLots, sec, renderRes.OpenLotsTables[sec]); err != nil {
			errPrinter.F("Error printing open lots for %s: %v\n", sec, err)
			success = false
		}
	}
	if err := writer.PrintRenderTable(outfmt.AggregateGains, "", renderRes.AggregateGainsTable); err != nil {
		errPrinter.F("Error printing aggregate gains: %v\n", err)
		success = false
	}
	return success, renderRes
}

// RunSummaryApp writes, as a CSV of txs, the open lots of every security that
// replayed without error.
func RunSummaryApp(
	out io.Writer,
	csvFileReaders []DescribedReader,
	options Options,
	errPrinter log.ErrorPrinter) error {

	ledgers, err := LoadLedgers(csvFileReaders, options.Strategy)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return err
	}
	if err := ledgers.Err(); err != nil {
		errPrinter.Ln("Error:", err)
		return err
	}

	summaryTxs := []*ptf.Tx{}
	for _, sec := range ledgers.Securities() {
		summaryTxs = append(summaryTxs, ptf.MakeSummaryTxs(ledgers.BySecurity[sec])...)
	}
	return ptf.WriteTxCsv(out, summaryTxs)
}

// RunTaxApp values every security with a price in prices, and estimates the
// tax due if all of its lots were sold as of asOf. It also estimates the tax on
// gains already realized in asOf's year.
func RunTaxApp(
	writer outfmt.ReportWriter,
	csvFileReaders []DescribedReader,
	prices map[string]decimal.Decimal,
	settings ptf.TaxSettings,
	asOf date.Date,
	options Options,
	errPrinter log.ErrorPrinter) error {

	if err := settings.Validate(); err != nil {
		errPrinter.Ln("Error:", err)
		return err
	}
	ledgers, err := LoadLedgers(csvFileReaders, options.Strategy)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return err
	}
	if err := ledgers.Err(); err != nil {
		errPrinter.Ln("Error:", err)
		return err
	}
	asOf = asOf.OrToday()

	rows := []ptf.TaxEstimateRow{}
	secGains := make(map[string]*ptf.CumulativeRealizedGains)
	for _, sec := range ledgers.Securities() {
		ledger := ledgers.BySecurity[sec]
		secGains[sec] = ptf.CalcSecurityCumulativeRealizedGains(ledger.Sales)
		if len(ledger.OpenLots) == 0 {
			continue
		}
		price, ok := prices[sec]
		if !ok {
			log.Warnf("No price given for %s. Its unrealized gains are not estimated.", sec)
			continue
		}
		summary, err := ptf.ValueLots(ledger.OpenLots, price, asOf)
		if err != nil {
			errPrinter.Ln("Error:", err)
			return err
		}
		estimate, err := ptf.EstimateTaxLiability(summary, settings)
		if err != nil {
			errPrinter.Ln("Error:", err)
			return err
		}
		ledger.Holding.Revalue(price)
		rows = append(rows, ptf.TaxEstimateRow{Label: sec, Summary: summary, Estimate: estimate})

		if err := writer.PrintRenderTable(outfmt.OpenLots, sec,
			ptf.RenderOpenLotsTable(ledger, summary, options.RenderFullValues)); err != nil {
			return err
		}
	}
	for sec := range prices {
		if _, ok := ledgers.BySecurity[sec]; !ok {
			log.Warnf("Price given for %s, which has no transactions", sec)
		}
	}

	if err := writer.PrintRenderTable(outfmt.TaxEstimate, asOf.String(),
		ptf.RenderTaxEstimateTable(rows, settings, options.RenderFullValues)); err != nil {
		return err
	}

	gains := ptf.CalcCumulativeRealizedGains(secGains)
	realized, err := ptf.EstimateRealizedTax(gains, asOf.Year(), settings)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return err
	}
	return writer.PrintRenderTable(outfmt.RealizedTax, fmt.Sprintf("%d", asOf.Year()),
		ptf.RenderRealizedTaxTable(realized, settings, options.RenderFullValues))
}

// RunWhatIfApp previews req against the replayed lots of req.Security. Nothing
// is committed.
func RunWhatIfApp(
	writer outfmt.ReportWriter,
	csvFileReaders []DescribedReader,
	req ptf.SaleRequest,
	options Options,
	errPrinter log.ErrorPrinter) (*ptf.SalePreview, error) {

	ledgers, err := LoadLedgers(csvFileReaders, options.Strategy)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	ledger, ok := ledgers.BySecurity[req.Security]
	if !ok {
		err := fmt.Errorf("%w: no transactions for %s", ptf.ErrInvalidSaleRequest, req.Security)
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	if err, ok := ledgers.Errors[req.Security]; ok {
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	req.Date = req.Date.OrToday()

	preview, err := ledger.PreviewSale(req)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	dispositions, err := ptf.EvaluateSaleDispositions(ledger.Lots, preview.Allocations, req.Price)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}

	name := fmt.Sprintf("%s %s @ %s on %s (%s)", req.Security, req.Quantity, req.Price, req.Date, req.Strategy)
	if err := writer.PrintRenderTable(outfmt.SalePreview, name,
		ptf.RenderSalePreviewTable(preview, dispositions, options.RenderFullValues)); err != nil {
		return nil, err
	}

	remaining := &ptf.Ledger{
		Security: ledger.Security,
		Strategy: ledger.Strategy,
		Lots:     preview.Lots,
		OpenLots: ptf.OpenLots(preview.Lots),
		Holding:  ptf.NewHolding(ledger.Security, preview.Lots),
	}
	if err := writer.PrintRenderTable(outfmt.OpenLots, req.Security+" after the sale",
		ptf.RenderOpenLotsTable(remaining, nil, options.RenderFullValues)); err != nil {
		return nil, err
	}
	return preview, nil
}

func RunAgingApp(
	writer outfmt.ReportWriter,
	csvFileReaders []DescribedReader,
	horizonDays int,
	asOf date.Date,
	options Options,
	errPrinter log.ErrorPrinter) ([]ptf.AgingLot, error) {

	ledgers, err := LoadLedgers(csvFileReaders, options.Strategy)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	if err := ledgers.Err(); err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}

	aging, err := ptf.FindAgingLots(ledgers.AllLots(), asOf, horizonDays)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	if err := writer.PrintRenderTable(outfmt.AgingLots, fmt.Sprintf("%d days", horizonDays),
		ptf.RenderAgingLotsTable(aging, options.RenderFullValues)); err != nil {
		return nil, err
	}
	return aging, nil
}
