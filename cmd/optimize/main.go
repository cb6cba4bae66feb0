package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ducminhle1904/quantsim/internal/events"
	"github.com/ducminhle1904/quantsim/internal/monitoring"
	"github.com/ducminhle1904/quantsim/internal/optimizer"
	"github.com/ducminhle1904/quantsim/internal/sim"
	"github.com/ducminhle1904/quantsim/pkg/config"
	"github.com/ducminhle1904/quantsim/pkg/data"
	"github.com/ducminhle1904/quantsim/pkg/reporting"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dataFile := flag.String("data", "", "override data_file from config")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if cfg.DataFile == "" {
		fmt.Fprintln(os.Stderr, "no data file: set data_file in config or pass -data")
		os.Exit(1)
	}
	if len(cfg.Grid) == 0 {
		fmt.Fprintln(os.Stderr, "no parameter grid: set grid in config")
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Ctrl-C stops scheduling new fold tasks; completed folds are reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("optimization failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	series, err := data.NewLoader(logger).Load(cfg.DataFile)
	if err != nil {
		return err
	}
	logger.Info("loaded series", zap.String("symbol", cfg.Symbol), zap.Int("bars", len(series)))

	sink := events.MultiSink{events.NewZapSink(logger)}
	health := monitoring.NewHealthChecker()
	if cfg.Monitoring.Enabled {
		sink = append(sink, monitoring.NewPromSink(), health)
		go serveMonitoring(cfg.Monitoring.Port, health, logger)
	}

	opt := optimizer.New(optimizer.Config{
		Strategy:    cfg.Strategy.Name,
		Grid:        optimizer.Grid(cfg.Grid),
		Folds: optimizer.FoldConfig{
			TrainBars: cfg.WalkForward.TrainBars,
			TestBars:  cfg.WalkForward.TestBars,
			StepBars:  cfg.WalkForward.StepBars,
		},
		InitialCash: cfg.InitialBalance,
		Risk:        cfg.Risk,
		Costs:       sim.NewCostModel(cfg.Commission, cfg.SlippagePct),
		Workers:     cfg.WalkForward.Workers,
	}, optimizer.WithSink(sink))

	started := time.Now()
	report, err := opt.Run(ctx, cfg.Symbol, series)
	if err != nil && !errors.Is(err, optimizer.ErrNoCompletedFolds) {
		return err
	}
	logger.Info("sweep finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("results", len(report.Results)),
		zap.Bool("cancelled", report.Cancelled))

	reporting.PrintSweep(os.Stdout, report)

	if cfg.Output.CSV {
		if werr := reporting.WriteFoldsCSV(filepath.Join(cfg.Output.Dir, "folds.csv"), report.Results); werr != nil {
			return werr
		}
	}
	if cfg.Output.Excel {
		if werr := reporting.WriteSweepXLSX(filepath.Join(cfg.Output.Dir, "sweep.xlsx"), report); werr != nil {
			return werr
		}
	}
	return err
}

func serveMonitoring(port int, health *monitoring.HealthChecker, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)

	addr := fmt.Sprintf(":%d", port)
	logger.Info("monitoring endpoint up", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("monitoring endpoint stopped", zap.Error(err))
	}
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
