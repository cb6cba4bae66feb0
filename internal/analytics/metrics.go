// Package analytics derives summary performance metrics from a
// simulation's equity curve and trade ledger. Compute is a pure
// function: it never mutates its inputs and touches no global state.
package analytics

import (
	"math"
	"time"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

const hoursPerYear = 24 * 365.25

// Metrics is the summary of one simulation run.
type Metrics struct {
	TotalReturn          float64
	CAGR                 float64
	MaxDrawdown          float64
	SharpeRatio          float64
	SortinoRatio         float64
	CalmarRatio          float64
	AnnualizedVolatility float64
	WinRate              float64
	ProfitFactor         float64
	NumTrades            int
	ClosingTrades        int
}

// Compute summarizes the equity curve and ledger. An empty curve yields
// zero metrics.
func Compute(curve []types.EquityPoint, ledger []types.Trade) Metrics {
	m := Metrics{NumTrades: len(ledger)}
	if len(curve) == 0 || curve[0].Equity <= 0 {
		return m
	}

	first, last := curve[0], curve[len(curve)-1]
	m.TotalReturn = last.Equity/first.Equity - 1
	m.MaxDrawdown = maxDrawdown(curve)
	m.CAGR = cagr(first, last)

	returns := periodicReturns(curve)
	periodsPerYear := periodsPerYear(curve)
	mean, stdDev := meanStd(returns)
	if stdDev > 0 {
		m.SharpeRatio = mean / stdDev * math.Sqrt(periodsPerYear)
		m.AnnualizedVolatility = stdDev * math.Sqrt(periodsPerYear)
	}
	m.SortinoRatio = sortino(returns, mean, periodsPerYear)
	if m.MaxDrawdown > 0 {
		m.CalmarRatio = m.CAGR / m.MaxDrawdown
	}

	m.ClosingTrades, m.WinRate, m.ProfitFactor = tradeStats(ledger)
	return m
}

// AsMap flattens the metrics into the name -> value mapping handed to
// reporting consumers.
func (m Metrics) AsMap() map[string]float64 {
	return map[string]float64{
		"total_return":          m.TotalReturn,
		"cagr":                  m.CAGR,
		"max_drawdown":          m.MaxDrawdown,
		"sharpe_ratio":          m.SharpeRatio,
		"sortino_ratio":         m.SortinoRatio,
		"calmar_ratio":          m.CalmarRatio,
		"annualized_volatility": m.AnnualizedVolatility,
		"win_rate":              m.WinRate,
		"profit_factor":         m.ProfitFactor,
		"num_trades":            float64(m.NumTrades),
		"closing_trades":        float64(m.ClosingTrades),
	}
}

// maxDrawdown is the largest peak-to-trough decline as a fraction of the peak.
func maxDrawdown(curve []types.EquityPoint) float64 {
	peak := curve[0].Equity
	worst := 0.0
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if peak > 0 {
			dd := (peak - pt.Equity) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

func cagr(first, last types.EquityPoint) float64 {
	years := last.Timestamp.Sub(first.Timestamp).Hours() / hoursPerYear
	if years <= 0 || first.Equity <= 0 || last.Equity <= 0 {
		return 0
	}
	return math.Pow(last.Equity/first.Equity, 1/years) - 1
}

func periodicReturns(curve []types.EquityPoint) []float64 {
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1].Equity > 0 {
			returns = append(returns, curve[i].Equity/curve[i-1].Equity-1)
		}
	}
	return returns
}

// periodsPerYear infers the bar frequency from the curve's average interval.
func periodsPerYear(curve []types.EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	span := curve[len(curve)-1].Timestamp.Sub(curve[0].Timestamp)
	if span <= 0 {
		return 0
	}
	avg := span / time.Duration(len(curve)-1)
	return float64(hoursPerYear) * float64(time.Hour) / float64(avg)
}

func meanStd(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func sortino(returns []float64, mean, periodsPerYear float64) float64 {
	downside := 0.0
	count := 0
	for _, r := range returns {
		if r < 0 {
			downside += r * r
			count++
		}
	}
	if count == 0 || downside == 0 {
		return 0
	}
	downsideDev := math.Sqrt(downside / float64(count))
	return mean / downsideDev * math.Sqrt(periodsPerYear)
}

// tradeStats counts closing trades only: win rate is winning closes over
// all closes, profit factor is gross profit over gross loss.
func tradeStats(ledger []types.Trade) (closes int, winRate, profitFactor float64) {
	wins := 0
	grossProfit, grossLoss := 0.0, 0.0
	for _, tr := range ledger {
		if !tr.Closing {
			continue
		}
		closes++
		if tr.RealizedPnL > 0 {
			wins++
			grossProfit += tr.RealizedPnL
		} else {
			grossLoss += -tr.RealizedPnL
		}
	}
	if closes > 0 {
		winRate = float64(wins) / float64(closes)
	}
	switch {
	case grossLoss > 0:
		profitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		profitFactor = math.Inf(1)
	}
	return closes, winRate, profitFactor
}
