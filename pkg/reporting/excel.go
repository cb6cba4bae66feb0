package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/quantsim/internal/analytics"
	"github.com/ducminhle1904/quantsim/internal/optimizer"
	"github.com/ducminhle1904/quantsim/internal/sim"
)

// WriteBacktestXLSX writes one run into a workbook with Summary, Trades
// and Equity sheets.
func WriteBacktestXLSX(path, symbol string, m analytics.Metrics, result *sim.Result) error {
	fx := excelize.NewFile()
	defer fx.Close()

	header, err := headerStyle(fx)
	if err != nil {
		return err
	}

	if err := writeSummarySheet(fx, header, symbol, m); err != nil {
		return err
	}
	if err := writeTradesSheet(fx, header, result); err != nil {
		return err
	}
	if err := writeEquitySheet(fx, header, result); err != nil {
		return err
	}

	fx.DeleteSheet("Sheet1")
	return saveWorkbook(fx, path)
}

// WriteSweepXLSX writes the walk-forward report into a workbook with
// Points and Folds sheets.
func WriteSweepXLSX(path string, report *optimizer.Report) error {
	fx := excelize.NewFile()
	defer fx.Close()

	header, err := headerStyle(fx)
	if err != nil {
		return err
	}

	sheet := "Points"
	if _, err := fx.NewSheet(sheet); err != nil {
		return err
	}
	cells := []interface{}{"Parameters", "Folds", "Mean OOS Sharpe", "Mean Max Drawdown"}
	if err := fx.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}
	styleHeaderRow(fx, sheet, header, len(cells))
	for i, p := range report.Points {
		row := []interface{}{p.Params.String(), p.Folds, p.MeanSharpe, p.MeanMaxDrawdown}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if len(report.Best) > 0 {
		note := []interface{}{"selected", report.Best.String()}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", len(report.Points)+3), &note); err != nil {
			return err
		}
	}

	sheet = "Folds"
	if _, err := fx.NewSheet(sheet); err != nil {
		return err
	}
	cells = []interface{}{"Fold", "Parameters", "Skipped", "Reason", "Train Sharpe", "Test Sharpe", "Test Return", "Test Max DD"}
	if err := fx.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}
	styleHeaderRow(fx, sheet, header, len(cells))
	for i, r := range report.Results {
		row := []interface{}{
			r.Fold.Index, r.Params.String(), r.Skipped, r.Reason,
			r.Train.SharpeRatio, r.Test.SharpeRatio, r.Test.TotalReturn, r.Test.MaxDrawdown,
		}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	fx.DeleteSheet("Sheet1")
	return saveWorkbook(fx, path)
}

func writeSummarySheet(fx *excelize.File, header int, symbol string, m analytics.Metrics) error {
	sheet := "Summary"
	if _, err := fx.NewSheet(sheet); err != nil {
		return err
	}
	cells := []interface{}{"Metric", "Value"}
	if err := fx.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}
	styleHeaderRow(fx, sheet, header, len(cells))

	metrics := m.AsMap()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := fx.SetSheetRow(sheet, "A2", &[]interface{}{"symbol", symbol}); err != nil {
		return err
	}
	for i, name := range names {
		row := []interface{}{name, metrics[name]}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", i+3), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeTradesSheet(fx *excelize.File, header int, result *sim.Result) error {
	sheet := "Trades"
	if _, err := fx.NewSheet(sheet); err != nil {
		return err
	}
	cells := []interface{}{"Timestamp", "Symbol", "Side", "Quantity", "Fill Price", "Commission", "Slippage", "Realized PnL", "Closing"}
	if err := fx.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}
	styleHeaderRow(fx, sheet, header, len(cells))
	for i, tr := range result.Ledger {
		row := []interface{}{
			tr.Timestamp.Format(timeLayout), tr.Symbol, tr.Side.String(),
			tr.Quantity, tr.FillPrice, tr.Commission, tr.SlippageCost, tr.RealizedPnL, tr.Closing,
		}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeEquitySheet(fx *excelize.File, header int, result *sim.Result) error {
	sheet := "Equity"
	if _, err := fx.NewSheet(sheet); err != nil {
		return err
	}
	cells := []interface{}{"Timestamp", "Equity"}
	if err := fx.SetSheetRow(sheet, "A1", &cells); err != nil {
		return err
	}
	styleHeaderRow(fx, sheet, header, len(cells))
	for i, pt := range result.EquityCurve {
		row := []interface{}{pt.Timestamp.Format(timeLayout), pt.Equity}
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func headerStyle(fx *excelize.File) (int, error) {
	return fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func styleHeaderRow(fx *excelize.File, sheet string, style, columns int) {
	end, _ := excelize.CoordinatesToCellName(columns, 1)
	fx.SetCellStyle(sheet, "A1", end, style)
}

func saveWorkbook(fx *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return fx.SaveAs(path)
}
