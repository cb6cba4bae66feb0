package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

func curveFrom(equities []float64, interval time.Duration) []types.EquityPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := make([]types.EquityPoint, len(equities))
	for i, eq := range equities {
		curve[i] = types.EquityPoint{Timestamp: start.Add(time.Duration(i) * interval), Equity: eq}
	}
	return curve
}

func TestCompute_EmptyInputs(t *testing.T) {
	m := Compute(nil, nil)
	assert.Equal(t, Metrics{}, m)
}

func TestCompute_TotalReturnAndDrawdown(t *testing.T) {
	curve := curveFrom([]float64{10000, 11000, 9900, 10500, 12000}, 24*time.Hour)

	m := Compute(curve, nil)

	assert.InDelta(t, 0.2, m.TotalReturn, 1e-9)
	// Largest peak-to-trough: 11000 -> 9900 = 10%.
	assert.InDelta(t, 0.1, m.MaxDrawdown, 1e-9)
	assert.Greater(t, m.CAGR, 0.0)
}

func TestCompute_SharpeSign(t *testing.T) {
	rising := curveFrom([]float64{100, 101, 102, 103, 104, 105}, time.Hour)
	falling := curveFrom([]float64{105, 104, 103, 102, 101, 100}, time.Hour)

	up := Compute(rising, nil)
	down := Compute(falling, nil)

	assert.Greater(t, up.SharpeRatio, 0.0)
	assert.Less(t, down.SharpeRatio, 0.0)
	// Monotonic decline has only negative periodic returns.
	assert.Less(t, down.SortinoRatio, 0.0)
}

func TestCompute_ConstantEquityHasZeroVolatility(t *testing.T) {
	curve := curveFrom([]float64{100, 100, 100, 100}, time.Hour)

	m := Compute(curve, nil)

	assert.Equal(t, 0.0, m.SharpeRatio)
	assert.Equal(t, 0.0, m.AnnualizedVolatility)
	assert.Equal(t, 0.0, m.MaxDrawdown)
}

func TestCompute_TradeStats(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger := []types.Trade{
		{Timestamp: ts, Side: types.SideBuy, Quantity: 10},                                // open, ignored
		{Timestamp: ts, Side: types.SideSell, Quantity: 10, Closing: true, RealizedPnL: 100}, // win
		{Timestamp: ts, Side: types.SideBuy, Quantity: 5},                                 // open, ignored
		{Timestamp: ts, Side: types.SideSell, Quantity: 5, Closing: true, RealizedPnL: -40},  // loss
		{Timestamp: ts, Side: types.SideSell, Quantity: 5, Closing: true, RealizedPnL: 60},   // win
	}
	curve := curveFrom([]float64{10000, 10120}, 24*time.Hour)

	m := Compute(curve, ledger)

	assert.Equal(t, 5, m.NumTrades)
	assert.Equal(t, 3, m.ClosingTrades)
	assert.InDelta(t, 2.0/3.0, m.WinRate, 1e-9)
	assert.InDelta(t, 160.0/40.0, m.ProfitFactor, 1e-9)
}

func TestCompute_ProfitFactorAllWins(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger := []types.Trade{
		{Timestamp: ts, Closing: true, RealizedPnL: 50},
	}
	m := Compute(curveFrom([]float64{100, 150}, time.Hour), ledger)

	assert.True(t, math.IsInf(m.ProfitFactor, 1))
	assert.Equal(t, 1.0, m.WinRate)
}

func TestPeriodsPerYear(t *testing.T) {
	daily := curveFrom([]float64{1, 1, 1}, 24*time.Hour)
	hourly := curveFrom([]float64{1, 1, 1}, time.Hour)

	assert.InDelta(t, 365.25, periodsPerYear(daily), 1e-6)
	assert.InDelta(t, 365.25*24, periodsPerYear(hourly), 1e-3)
}

func TestAsMap(t *testing.T) {
	curve := curveFrom([]float64{10000, 11000}, 24*time.Hour)
	m := Compute(curve, nil)

	out := m.AsMap()
	assert.InDelta(t, m.TotalReturn, out["total_return"], 1e-12)
	assert.InDelta(t, m.MaxDrawdown, out["max_drawdown"], 1e-12)
	assert.Contains(t, out, "sharpe_ratio")
	assert.Contains(t, out, "profit_factor")
}
