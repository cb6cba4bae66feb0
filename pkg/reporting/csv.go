package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ducminhle1904/quantsim/internal/optimizer"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteTradesCSV exports the trade ledger in execution order.
func WriteTradesCSV(path string, ledger []types.Trade) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{
			"timestamp", "symbol", "side", "quantity", "fill_price",
			"commission", "slippage_cost", "realized_pnl", "closing",
		}); err != nil {
			return err
		}
		for _, tr := range ledger {
			row := []string{
				tr.Timestamp.Format(timeLayout),
				tr.Symbol,
				tr.Side.String(),
				formatFloat(tr.Quantity),
				formatFloat(tr.FillPrice),
				formatFloat(tr.Commission),
				formatFloat(tr.SlippageCost),
				formatFloat(tr.RealizedPnL),
				strconv.FormatBool(tr.Closing),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteEquityCurveCSV exports the per-bar equity marks.
func WriteEquityCurveCSV(path string, curve []types.EquityPoint) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"timestamp", "equity"}); err != nil {
			return err
		}
		for _, pt := range curve {
			if err := w.Write([]string{pt.Timestamp.Format(timeLayout), formatFloat(pt.Equity)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteFoldsCSV exports the sweep's (fold, grid point) results table.
func WriteFoldsCSV(path string, results []optimizer.FoldResult) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{
			"fold", "params", "skipped", "reason",
			"train_sharpe", "test_sharpe", "test_return", "test_max_drawdown",
		}); err != nil {
			return err
		}
		for _, r := range results {
			row := []string{
				strconv.Itoa(r.Fold.Index),
				r.Params.String(),
				strconv.FormatBool(r.Skipped),
				r.Reason,
				formatFloat(r.Train.SharpeRatio),
				formatFloat(r.Test.SharpeRatio),
				formatFloat(r.Test.TotalReturn),
				formatFloat(r.Test.MaxDrawdown),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.8f", v)
}
