package outfmt

import (
	"github.com/tsiemens/lotbook/portfolio"
)

type OutputType int

const (
	Transactions OutputType = iota
	OpenLots
	AggregateGains
	TaxEstimate
	RealizedTax
	SalePreview
	AgingLots
	Performance
)

type ReportWriter interface {
	PrintRenderTable(outType OutputType, name string, tableModel *portfolio.RenderTable) error
}
