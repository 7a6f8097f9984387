package perf_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tsiemens/lotbook/date"
	"github.com/tsiemens/lotbook/perf"
)

var DInt = decimal.NewFromInt

func mkSeries(start date.Date, values ...int64) []perf.HistoricalValuePoint {
	series := make([]perf.HistoricalValuePoint, 0, len(values))
	for i, v := range values {
		series = append(series, perf.HistoricalValuePoint{Date: start.AddDays(i), TotalValue: DInt(v)})
	}
	return series
}

func TestCAGR(t *testing.T) {
	rq := require.New(t)

	rq.InDelta(10.0, perf.CAGR(DInt(100), DInt(121), 730), 1e-9)
	rq.InDelta(-9.0909, perf.CAGR(DInt(121), DInt(100), 730), 1e-4)
	rq.InDelta(21.0, perf.CAGR(DInt(100), DInt(121), 365), 1e-9)

	rq.Equal(0.0, perf.CAGR(DInt(100), DInt(121), 0))
	rq.Equal(0.0, perf.CAGR(DInt(100), DInt(121), -5))
	rq.Equal(0.0, perf.CAGR(DInt(0), DInt(121), 365))
	rq.Equal(-100.0, perf.CAGR(DInt(100), DInt(0), 365))
	rq.Equal(-100.0, perf.CAGR(DInt(100), DInt(-1), 365))
}

func TestMaxDrawdown(t *testing.T) {
	rq := require.New(t)

	start := date.New(2023, 1, 1)
	rq.InDelta(20.0, perf.MaxDrawdown(mkSeries(start, 100, 110, 88, 95)), 1e-9)
	// The deepest trough after the highest peak is not always the largest.
	rq.InDelta(50.0, perf.MaxDrawdown(mkSeries(start, 100, 50, 200, 150, 180)), 1e-9)
	rq.Equal(0.0, perf.MaxDrawdown(mkSeries(start, 100, 110, 120)))
	rq.Equal(0.0, perf.MaxDrawdown(mkSeries(start, 100)))
	rq.Equal(0.0, perf.MaxDrawdown(nil))
	// Zero values are skipped.
	rq.InDelta(10.0, perf.MaxDrawdown(mkSeries(start, 0, 100, 0, 90)), 1e-9)
}

func TestDailyReturns(t *testing.T) {
	rq := require.New(t)

	start := date.New(2023, 1, 1)
	returns := perf.DailyReturns(mkSeries(start, 100, 110, 99, 0, 50))
	// The pair starting at 0 is skipped.
	rq.Equal(3, len(returns))
	rq.InDelta(0.1, returns[0], 1e-12)
	rq.InDelta(-0.1, returns[1], 1e-12)
	rq.InDelta(-1.0, returns[2], 1e-12)

	rq.Nil(perf.DailyReturns(mkSeries(start, 100)))
}

func alternatingReturns(n int) []float64 {
	returns := make([]float64, n)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.005
		}
	}
	return returns
}

func TestSharpeRatio(t *testing.T) {
	rq := require.New(t)

	// mean 0.0025, population std 0.0075
	rq.InDelta(1.0/3.0, perf.SharpeRatio(alternatingReturns(30), 0), 1e-9)
	rq.InDelta((0.0025-0.0252/252)/0.0075, perf.SharpeRatio(alternatingReturns(30), 0.0252), 1e-9)

	rq.Equal(0.0, perf.SharpeRatio(alternatingReturns(29), 0))
	rq.Equal(0.0, perf.SharpeRatio(nil, 0))

	constant := make([]float64, 40)
	for i := range constant {
		constant[i] = 0.001
	}
	rq.Equal(0.0, perf.SharpeRatio(constant, 0))
}

func TestAnalyze(t *testing.T) {
	rq := require.New(t)

	start := date.New(2022, 1, 1)
	series := []perf.HistoricalValuePoint{
		{Date: start, TotalValue: DInt(100)},
		{Date: start.AddDays(365), TotalValue: DInt(80), IsInterpolated: true},
		{Date: start.AddDays(730), TotalValue: DInt(121)},
	}
	r, err := perf.Analyze(series, perf.DefaultRiskFreeRate)
	rq.NoError(err)
	rq.Equal(start, r.StartDate)
	rq.Equal(start.AddDays(730), r.EndDate)
	rq.Equal(730, r.DaysHeld)
	rq.InDelta(21.0, r.TotalReturnPercent, 1e-9)
	rq.InDelta(10.0, r.CAGR, 1e-9)
	rq.InDelta(20.0, r.MaxDrawdown, 1e-9)
	rq.Equal(2, r.ReturnCount)
	rq.Equal(0.0, r.SharpeRatio)
	rq.Equal(3, r.Points)
	rq.Equal(1, r.InterpolatedPoints)
	rq.Equal(perf.DefaultRiskFreeRate, r.RiskFreeRate)

	r, err = perf.Analyze(nil, 0.01)
	rq.NoError(err)
	rq.Equal(0, r.Points)
	rq.Equal(0.0, r.CAGR)

	r, err = perf.Analyze(mkSeries(start, 100), 0.01)
	rq.NoError(err)
	rq.Equal(0, r.DaysHeld)
	rq.Equal(0.0, r.CAGR)
}

func TestAnalyzeRejectsInvalidSeries(t *testing.T) {
	rq := require.New(t)

	start := date.New(2022, 1, 1)
	for _, series := range [][]perf.HistoricalValuePoint{
		{{Date: start, TotalValue: DInt(100)}, {Date: start.AddDays(-1), TotalValue: DInt(100)}},
		{{TotalValue: DInt(1)}},
	} {
		_, err := perf.Analyze(series, 0)
		rq.ErrorIs(err, perf.ErrInvalidSeries)
	}

	// Non-positive values are skipped, as in MaxDrawdown and DailyReturns.
	r, err := perf.Analyze(mkSeries(start, 100, -5, 90, 99), 0)
	rq.NoError(err)
	rq.InDelta(10.0, r.MaxDrawdown, 1e-9)
	rq.Equal(2, r.ReturnCount)
	rq.InDelta(-1.0, r.TotalReturnPercent, 1e-9)

	// Repeated dates are allowed.
	_, err = perf.Analyze([]perf.HistoricalValuePoint{
		{Date: start, TotalValue: DInt(100)}, {Date: start, TotalValue: DInt(101)},
	}, 0)
	rq.NoError(err)
}

func TestParseValueSeriesCsv(t *testing.T) {
	rq := require.New(t)

	csvText := "Interpolated,Total Value,Date\n" +
		",\"1,000.50\",2023-01-01\n" +
		"true,990,2023-01-02\n"
	series, err := perf.ParseValueSeriesCsv(strings.NewReader(csvText), "values.csv")
	rq.NoError(err)
	rq.Equal(2, len(series))
	rq.Equal(date.New(2023, 1, 1), series[0].Date)
	rq.True(decimal.RequireFromString("1000.5").Equal(series[0].TotalValue))
	rq.False(series[0].IsInterpolated)
	rq.True(series[1].IsInterpolated)

	series, err = perf.ParseValueSeriesCsv(strings.NewReader("date,value\n2023-01-01,5\n"), "short.csv")
	rq.NoError(err)
	rq.Equal(1, len(series))

	for _, bad := range []string{
		"",
		"date,price\n2023-01-01,5\n",
		"date,value\n2023/01/01,5\n",
		"date,value\n2023-01-01,five\n",
		"date,value,interpolated\n2023-01-01,5,maybe\n",
	} {
		_, err := perf.ParseValueSeriesCsv(strings.NewReader(bad), "bad.csv")
		rq.Error(err, bad)
	}
}
