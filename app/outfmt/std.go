package outfmt

import (
	"fmt"
	"io"

	"github.com/tsiemens/lotbook/portfolio"
)

type STDWriter struct {
	w io.Writer
}

func NewSTDWriter(w io.Writer) *STDWriter {
	return &STDWriter{
		w: w,
	}
}

// Write implements io.Writer.
func (w *STDWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if err != nil {
		panic(fmt.Errorf("STDWriter.Write: %w", err))
	}
	return n, err
}

func title(outType OutputType, name string) string {
	switch outType {
	case Transactions:
		return fmt.Sprintf("Sales and transfers for %s", name)
	case OpenLots:
		return fmt.Sprintf("Open lots for %s", name)
	case AggregateGains:
		return "Aggregate Realized Gains"
	case TaxEstimate:
		return fmt.Sprintf("Unrealized gains and estimated tax as of %s", name)
	case RealizedTax:
		return fmt.Sprintf("Estimated tax on gains realized in %s", name)
	case SalePreview:
		return fmt.Sprintf("Sale preview: %s", name)
	case AgingLots:
		return fmt.Sprintf("Lots becoming long term within %s", name)
	case Performance:
		return fmt.Sprintf("Performance of %s", name)
	}
	panic(fmt.Sprint("OutputType ", outType, " is not implemented"))
}

// PrintRenderTable implements ReportWriter.
func (w *STDWriter) PrintRenderTable(outType OutputType, name string, tableModel *portfolio.RenderTable) error {
	portfolio.PrintRenderTable(title(outType, name), tableModel, w)
	fmt.Fprintln(w, "")
	return nil
}
