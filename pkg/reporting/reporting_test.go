package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/quantsim/internal/analytics"
	"github.com/ducminhle1904/quantsim/internal/optimizer"
	"github.com/ducminhle1904/quantsim/internal/sim"
	"github.com/ducminhle1904/quantsim/internal/strategy"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

func sampleResult() *sim.Result {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &sim.Result{
		Ledger: []types.Trade{
			{Timestamp: ts, Symbol: "BTCUSDT", Side: types.SideBuy, Quantity: 1, FillPrice: 100, Commission: 0.1},
			{Timestamp: ts.Add(time.Hour), Symbol: "BTCUSDT", Side: types.SideSell, Quantity: 1, FillPrice: 110, Commission: 0.11, RealizedPnL: 10, Closing: true},
		},
		EquityCurve: []types.EquityPoint{
			{Timestamp: ts, Equity: 10000},
			{Timestamp: ts.Add(time.Hour), Equity: 10010},
		},
		Halts:      []sim.HaltEvent{{Timestamp: ts.Add(time.Hour), Drawdown: 0.21}},
		Rejections: 3,
	}
}

func sampleReport() *optimizer.Report {
	params := strategy.Params{"short_window": 10, "long_window": 30}
	return &optimizer.Report{
		Strategy: "ema_crossover",
		Best:     params,
		Summary:  optimizer.PointSummary{Params: params, MeanSharpe: 1.2, MeanMaxDrawdown: 0.08, Folds: 4},
		Points: []optimizer.PointSummary{
			{Params: params, MeanSharpe: 1.2, MeanMaxDrawdown: 0.08, Folds: 4},
		},
		Results: []optimizer.FoldResult{
			{Fold: optimizer.Fold{Index: 0, TrainEnd: 200, TestStart: 200, TestEnd: 250}, Params: params,
				Test: analytics.Metrics{SharpeRatio: 1.1, TotalReturn: 0.02, MaxDrawdown: 0.05}},
			{Fold: optimizer.Fold{Index: 1}, Params: params, Skipped: true, Reason: "insufficient data"},
		},
	}
}

func TestPrintBacktest(t *testing.T) {
	result := sampleResult()
	m := analytics.Compute(result.EquityCurve, result.Ledger)

	var buf bytes.Buffer
	PrintBacktest(&buf, "BTCUSDT", m, result)

	out := buf.String()
	assert.Contains(t, out, "BACKTEST RESULTS: BTCUSDT")
	assert.Contains(t, out, "Sharpe Ratio")
	assert.Contains(t, out, "breaker tripped")
}

func TestPrintSweep(t *testing.T) {
	var buf bytes.Buffer
	PrintSweep(&buf, sampleReport())

	out := buf.String()
	assert.Contains(t, out, "WALK-FORWARD SWEEP: ema_crossover")
	assert.Contains(t, out, "long_window=30")
	assert.Contains(t, out, "selected:")
	assert.Contains(t, out, "1 fold tasks skipped")
}

func TestWriteTradesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")
	require.NoError(t, WriteTradesCSV(path, sampleResult().Ledger))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "timestamp", rows[0][0])
	assert.Equal(t, "BUY", rows[1][2])
	assert.Equal(t, "true", rows[2][8])
}

func TestWriteEquityCurveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equity.csv")
	require.NoError(t, WriteEquityCurveCSV(path, sampleResult().EquityCurve))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestWriteFoldsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folds.csv")
	require.NoError(t, WriteFoldsCSV(path, sampleReport().Results))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "true", rows[2][2])
	assert.Equal(t, "insufficient data", rows[2][3])
}

func TestWriteBacktestXLSX(t *testing.T) {
	result := sampleResult()
	m := analytics.Compute(result.EquityCurve, result.Ledger)
	path := filepath.Join(t.TempDir(), "backtest.xlsx")
	require.NoError(t, WriteBacktestXLSX(path, "BTCUSDT", m, result))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	sheets := fx.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Trades")
	assert.Contains(t, sheets, "Equity")

	value, err := fx.GetCellValue("Trades", "C2")
	require.NoError(t, err)
	assert.Equal(t, "BUY", value)
}

func TestWriteSweepXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.xlsx")
	require.NoError(t, WriteSweepXLSX(path, sampleReport()))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.Contains(t, fx.GetSheetList(), "Points")
	assert.Contains(t, fx.GetSheetList(), "Folds")
}

func TestWriteMetricsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	m := analytics.Metrics{TotalReturn: 0.1, SharpeRatio: 1.5}
	require.NoError(t, WriteMetricsJSON(path, m))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.InDelta(t, 0.1, decoded["total_return"], 1e-9)
}

func TestWriteMetricsJSON_NonFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	m := analytics.Metrics{
		ProfitFactor: math.Inf(1),
		CalmarRatio:  math.Inf(-1),
		SortinoRatio: math.NaN(),
	}
	require.NoError(t, WriteMetricsJSON(path, m))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "inf", decoded["profit_factor"])
	assert.Equal(t, "-inf", decoded["calmar_ratio"])
	assert.Equal(t, "nan", decoded["sortino_ratio"])
}
