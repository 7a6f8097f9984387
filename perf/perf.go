// Package perf computes return and risk statistics over a portfolio value
// history.
package perf

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tsiemens/lotbook/date"
)

const (
	DefaultRiskFreeRate = 0.04

	// Fewer daily returns than this give a Sharpe ratio of 0.
	MinSharpeObservations = 30
	TradingDaysPerYear    = 252
	daysPerYear           = 365
)

var ErrInvalidSeries = errors.New("invalid value series")

// HistoricalValuePoint is the total portfolio value on a date. Interpolated
// points were filled in by the provider rather than observed.
type HistoricalValuePoint struct {
	Date           date.Date
	TotalValue     decimal.Decimal
	IsInterpolated bool
}

// CAGR returns the compound annual growth rate, as a percent, of growing start
// into end over daysHeld days.
//
// It is 0 when daysHeld or start is not positive, and -100 when end is not
// positive.
func CAGR(start, end decimal.Decimal, daysHeld int) float64 {
	if daysHeld <= 0 || !start.IsPositive() {
		return 0
	}
	if !end.IsPositive() {
		return -100
	}
	ratio := end.Div(start).InexactFloat64()
	return (math.Pow(ratio, float64(daysPerYear)/float64(daysHeld)) - 1) * 100
}

// MaxDrawdown returns the largest peak to trough decline in series, as a
// percent of the peak. Points with a non-positive value are skipped.
func MaxDrawdown(series []HistoricalValuePoint) float64 {
	if len(series) < 2 {
		return 0
	}
	peak := decimal.Zero
	maxDrawdown := decimal.Zero
	for _, p := range series {
		v := p.TotalValue
		if !v.IsPositive() {
			continue
		}
		if v.GreaterThan(peak) {
			peak = v
			continue
		}
		drawdown := peak.Sub(v).Div(peak)
		if drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown.Shift(2).InexactFloat64()
}

// DailyReturns returns the fractional return between each adjacent pair of
// points. Pairs whose earlier value is not positive are skipped, so the result
// may be shorter than len(series)-1.
func DailyReturns(series []HistoricalValuePoint) []float64 {
	if len(series) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].TotalValue
		if !prev.IsPositive() {
			continue
		}
		r := series[i].TotalValue.Sub(prev).Div(prev)
		returns = append(returns, r.InexactFloat64())
	}
	return returns
}

// SharpeRatio returns the mean excess daily return over its population
// standard deviation. The annual riskFreeRate is converted to a daily rate.
//
// The result is a daily ratio and is not annualized. It is 0 with fewer than
// MinSharpeObservations returns, or when the returns have no variance.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < MinSharpeObservations {
		return 0
	}
	if floats.Max(returns) == floats.Min(returns) {
		return 0
	}
	mean, std := stat.PopMeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return (mean - riskFreeRate/TradingDaysPerYear) / std
}

type Report struct {
	StartDate          date.Date
	EndDate            date.Date
	StartValue         decimal.Decimal
	EndValue           decimal.Decimal
	DaysHeld           int
	TotalReturnPercent float64
	CAGR               float64
	MaxDrawdown        float64
	ReturnCount        int
	SharpeRatio        float64
	RiskFreeRate       float64
	Points             int
	InterpolatedPoints int
}

// ValidateSeries checks that every point is dated and dates never decrease.
// Non-positive values are allowed; the statistics skip them.
func ValidateSeries(series []HistoricalValuePoint) error {
	for i, p := range series {
		if p.Date.IsZero() {
			return fmt.Errorf("%w: point %d has no date", ErrInvalidSeries, i)
		} else if i > 0 && p.Date.Before(series[i-1].Date) {
			return fmt.Errorf("%w: point %d on %v is before the previous point (%v)",
				ErrInvalidSeries, i, p.Date, series[i-1].Date)
		}
	}
	return nil
}

// Analyze computes every statistic in Report over series. An empty series
// yields a zero report.
func Analyze(series []HistoricalValuePoint, riskFreeRate float64) (*Report, error) {
	if err := ValidateSeries(series); err != nil {
		return nil, err
	}
	r := &Report{RiskFreeRate: riskFreeRate, Points: len(series)}
	if len(series) == 0 {
		return r, nil
	}

	first := series[0]
	last := series[len(series)-1]
	r.StartDate = first.Date
	r.EndDate = last.Date
	r.StartValue = first.TotalValue
	r.EndValue = last.TotalValue
	r.DaysHeld = last.Date.DaysSince(first.Date)
	if first.TotalValue.IsPositive() {
		r.TotalReturnPercent = last.TotalValue.Sub(first.TotalValue).Div(first.TotalValue).
			Shift(2).InexactFloat64()
	}
	r.CAGR = CAGR(first.TotalValue, last.TotalValue, r.DaysHeld)
	r.MaxDrawdown = MaxDrawdown(series)

	returns := DailyReturns(series)
	r.ReturnCount = len(returns)
	r.SharpeRatio = SharpeRatio(returns, riskFreeRate)

	for _, p := range series {
		if p.IsInterpolated {
			r.InterpolatedPoints++
		}
	}
	return r, nil
}
