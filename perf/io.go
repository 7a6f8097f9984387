package perf

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tsiemens/lotbook/date"
)

var CsvDateFormat string = date.DefaultFormat

// ParseValueSeriesCsv reads a value history with the columns
// "date", "total value" and optionally "interpolated". Column order is taken
// from the header row. desc names the source in errors.
func ParseValueSeriesCsv(reader io.Reader, desc string) ([]HistoricalValuePoint, error) {
	csvR := csv.NewReader(reader)
	csvR.TrimLeadingSpace = true
	records, err := csvR.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Failed to parse CSV %s: %v", desc, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("No rows found in %s", desc)
	}

	dateCol, valueCol, interpCol := -1, -1, -1
	for i, col := range records[0] {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "date":
			dateCol = i
		case "total value", "value":
			valueCol = i
		case "interpolated":
			interpCol = i
		}
	}
	if dateCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("%s must have \"date\" and \"total value\" columns", desc)
	}

	points := make([]HistoricalValuePoint, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 1
		d, err := date.Parse(CsvDateFormat, strings.TrimSpace(record[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("Error parsing %s at line %d: %v", desc, line, err)
		}
		v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(record[valueCol]), ",", ""))
		if err != nil {
			return nil, fmt.Errorf("Error parsing %s at line %d: total value: %v", desc, line, err)
		}
		p := HistoricalValuePoint{Date: d, TotalValue: v}
		if interpCol >= 0 {
			if s := strings.TrimSpace(record[interpCol]); s != "" {
				p.IsInterpolated, err = strconv.ParseBool(s)
				if err != nil {
					return nil, fmt.Errorf("Error parsing %s at line %d: interpolated: %v", desc, line, err)
				}
			}
		}
		points = append(points, p)
	}
	return points, nil
}
