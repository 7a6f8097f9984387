package outfmt

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/tsiemens/lotbook/portfolio"
)

type CSVWriter struct {
	OutDir string
}

func fileName(outType OutputType, name string) (string, error) {
	switch outType {
	case Transactions:
		return fmt.Sprintf("%s-sales.csv", name), nil
	case OpenLots:
		return fmt.Sprintf("%s-lots.csv", name), nil
	case AggregateGains:
		return "aggregate-gains.csv", nil
	case TaxEstimate:
		return "tax-estimate.csv", nil
	case RealizedTax:
		return fmt.Sprintf("realized-tax-%s.csv", name), nil
	case SalePreview:
		return "sale-preview.csv", nil
	case AgingLots:
		return "aging-lots.csv", nil
	case Performance:
		return "performance.csv", nil
	}
	return "", fmt.Errorf("OutputType %v not implemented", outType)
}

// PrintRenderTable implements ReportWriter.
func (w *CSVWriter) PrintRenderTable(outType OutputType, name string, tableModel *portfolio.RenderTable) error {
	fn, err := fileName(outType, name)
	if err != nil {
		return err
	}

	fp, err := os.Create(path.Join(w.OutDir, fn))
	if err != nil {
		return fmt.Errorf("Create file %q: %w", fn, err)
	}
	defer fp.Close()

	csvWriter := csv.NewWriter(fp)

	if err := csvWriter.Write(tableModel.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range tableModel.Rows {
		if err := csvWriter.Write(flattenCells(row)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if len(tableModel.Footer) > 0 {
		if err := csvWriter.Write(flattenCells(tableModel.Footer)); err != nil {
			return fmt.Errorf("write footer: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", fn, err)
	}

	for _, note := range tableModel.Notes {
		fmt.Fprintln(fp, note)
	}

	return nil
}

// Multi-line table cells are joined onto one line.
func flattenCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.ReplaceAll(cell, "\n", " ")
	}
	return out
}

func NewCSVWriter(outDir string) (*CSVWriter, error) {
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("Creating CSV output directory: %w", err)
	}
	return &CSVWriter{OutDir: outDir}, nil
}
