package app

import (
	"fmt"

	"github.com/tsiemens/lotbook/app/outfmt"
	"github.com/tsiemens/lotbook/log"
	"github.com/tsiemens/lotbook/perf"
	ptf "github.com/tsiemens/lotbook/portfolio"
)

func floatStr(v float64, renderFullValues bool) string {
	if renderFullValues {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%.2f", v)
}

/*
Generates a RenderTable that will render out to this:
| Metric        | Value      |
+---------------+------------+
| Start         | 2020-01-01 |
| ...           | ...        |
*/
func RenderPerfReport(r *perf.Report, renderFullValues bool) *ptf.RenderTable {
	table := &ptf.RenderTable{}
	table.Header = []string{"Metric", "Value"}

	pct := func(v float64) string { return floatStr(v, renderFullValues) + "%" }

	table.Rows = [][]string{
		{"Start", fmt.Sprintf("%s (%s)", r.StartDate, r.StartValue)},
		{"End", fmt.Sprintf("%s (%s)", r.EndDate, r.EndValue)},
		{"Days held", fmt.Sprintf("%d", r.DaysHeld)},
		{"Total return", pct(r.TotalReturnPercent)},
		{"CAGR", pct(r.CAGR)},
		{"Max drawdown", pct(r.MaxDrawdown)},
		{"Daily returns", fmt.Sprintf("%d", r.ReturnCount)},
		{"Sharpe ratio (daily)", floatStr(r.SharpeRatio, true)},
		{"Risk free rate", pct(r.RiskFreeRate * 100)},
		{"Points", fmt.Sprintf("%d (%d interpolated)", r.Points, r.InterpolatedPoints)},
	}

	if r.ReturnCount < perf.MinSharpeObservations {
		table.Notes = append(table.Notes, fmt.Sprintf(
			" Sharpe ratio needs at least %d daily returns, and is reported as 0.", perf.MinSharpeObservations))
	}
	if r.InterpolatedPoints > 0 {
		table.Notes = append(table.Notes, " Some values were interpolated by the value provider.")
	}
	return table
}

func RunPerfApp(
	writer outfmt.ReportWriter,
	valuesReader DescribedReader,
	riskFreeRate float64,
	options Options,
	errPrinter log.ErrorPrinter) (*perf.Report, error) {

	series, err := perf.ParseValueSeriesCsv(valuesReader.Reader, valuesReader.Desc)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	log.Verbosef("Read %d value points from %s", len(series), valuesReader.Desc)

	report, err := perf.Analyze(series, riskFreeRate)
	if err != nil {
		errPrinter.Ln("Error:", err)
		return nil, err
	}
	if err := writer.PrintRenderTable(outfmt.Performance, valuesReader.Desc,
		RenderPerfReport(report, options.RenderFullValues)); err != nil {
		return nil, err
	}
	return report, nil
}
