// Package reporting renders simulation and sweep results for humans and
// downstream tools: console tables, CSV exports, Excel workbooks and
// JSON summaries.
package reporting

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/quantsim/internal/analytics"
	"github.com/ducminhle1904/quantsim/internal/optimizer"
	"github.com/ducminhle1904/quantsim/internal/sim"
)

// PrintBacktest renders one run's summary table.
func PrintBacktest(w io.Writer, symbol string, m analytics.Metrics, result *sim.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("BACKTEST RESULTS: " + symbol)
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Total Return", formatPct(m.TotalReturn)},
		{"CAGR", formatPct(m.CAGR)},
		{"Max Drawdown", formatPct(m.MaxDrawdown)},
		{"Sharpe Ratio", formatRatio(m.SharpeRatio)},
		{"Sortino Ratio", formatRatio(m.SortinoRatio)},
		{"Calmar Ratio", formatRatio(m.CalmarRatio)},
		{"Annualized Volatility", formatPct(m.AnnualizedVolatility)},
		{"Win Rate", formatPct(m.WinRate)},
		{"Profit Factor", formatRatio(m.ProfitFactor)},
		{"Trades", m.NumTrades},
		{"Closing Trades", m.ClosingTrades},
		{"Rejected Signals", result.Rejections},
		{"Breaker Trips", len(result.Halts)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 22, Align: text.AlignLeft},
		{Number: 2, WidthMin: 12, Align: text.AlignRight},
	})
	t.Render()

	for _, halt := range result.Halts {
		fmt.Fprintf(w, "breaker tripped at %s (drawdown %.2f%%)\n",
			halt.Timestamp.Format("2006-01-02 15:04:05"), halt.Drawdown*100)
	}
}

// PrintSweep renders the walk-forward sweep: per-point aggregates and
// the selected parameter set.
func PrintSweep(w io.Writer, report *optimizer.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("WALK-FORWARD SWEEP: " + report.Strategy)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Parameters", "Folds", "Mean OOS Sharpe", "Mean Max DD"})

	for _, p := range report.Points {
		t.AppendRow(table.Row{
			p.Params.String(),
			p.Folds,
			formatRatio(p.MeanSharpe),
			formatPct(p.MeanMaxDrawdown),
		})
	}
	t.Render()

	if len(report.Best) > 0 {
		fmt.Fprintf(w, "selected: %s (mean OOS sharpe %.3f over %d folds)\n",
			report.Best.String(), report.Summary.MeanSharpe, report.Summary.Folds)
	}
	if report.Cancelled {
		fmt.Fprintln(w, "sweep cancelled; results above cover completed folds only")
	}

	skipped := 0
	for _, r := range report.Results {
		if r.Skipped {
			skipped++
		}
	}
	if skipped > 0 {
		fmt.Fprintf(w, "%d fold tasks skipped\n", skipped)
	}
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}
