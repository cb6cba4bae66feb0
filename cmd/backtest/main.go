package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ducminhle1904/quantsim/internal/analytics"
	"github.com/ducminhle1904/quantsim/internal/events"
	"github.com/ducminhle1904/quantsim/internal/sim"
	"github.com/ducminhle1904/quantsim/internal/strategy"
	"github.com/ducminhle1904/quantsim/pkg/config"
	"github.com/ducminhle1904/quantsim/pkg/data"
	"github.com/ducminhle1904/quantsim/pkg/reporting"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dataFile := flag.String("data", "", "override data_file from config")
	symbol := flag.String("symbol", "", "override symbol from config")
	flag.Parse()

	// Optional .env for local overrides.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if cfg.DataFile == "" {
		fmt.Fprintln(os.Stderr, "no data file: set data_file in config or pass -data")
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("backtest failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	series, err := data.NewLoader(logger).Load(cfg.DataFile)
	if err != nil {
		return err
	}
	logger.Info("loaded series",
		zap.String("symbol", cfg.Symbol),
		zap.Int("bars", len(series)),
		zap.Time("first", series[0].Timestamp),
		zap.Time("last", series[len(series)-1].Timestamp))

	strat, err := strategy.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return err
	}
	signals, err := strat.GenerateSignals(cfg.Symbol, series)
	if err != nil {
		return err
	}
	logger.Info("generated signals",
		zap.String("strategy", strat.Name()), zap.Int("signals", len(signals)))

	engine := sim.NewEngine(
		sim.NewCostModel(cfg.Commission, cfg.SlippagePct),
		cfg.Risk,
		sim.WithSink(events.NewZapSink(logger)),
	)
	result, err := engine.Run(cfg.Symbol, series, signals, cfg.InitialBalance)
	if err != nil {
		return err
	}

	metrics := analytics.Compute(result.EquityCurve, result.Ledger)
	reporting.PrintBacktest(os.Stdout, cfg.Symbol, metrics, result)

	if cfg.Output.CSV {
		if err := reporting.WriteTradesCSV(filepath.Join(cfg.Output.Dir, "trades.csv"), result.Ledger); err != nil {
			return err
		}
		if err := reporting.WriteEquityCurveCSV(filepath.Join(cfg.Output.Dir, "equity.csv"), result.EquityCurve); err != nil {
			return err
		}
		if err := reporting.WriteMetricsJSON(filepath.Join(cfg.Output.Dir, "metrics.json"), metrics); err != nil {
			return err
		}
	}
	if cfg.Output.Excel {
		if err := reporting.WriteBacktestXLSX(filepath.Join(cfg.Output.Dir, "backtest.xlsx"), cfg.Symbol, metrics, result); err != nil {
			return err
		}
	}
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
