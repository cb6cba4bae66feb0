package optimizer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/ducminhle1904/quantsim/internal/analytics"
	"github.com/ducminhle1904/quantsim/internal/events"
	"github.com/ducminhle1904/quantsim/internal/risk"
	"github.com/ducminhle1904/quantsim/internal/sim"
	"github.com/ducminhle1904/quantsim/internal/strategy"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

var ErrNoCompletedFolds = errors.New("optimizer: no fold completed for any grid point")

// Config carries everything one walk-forward sweep needs. It is passed
// by value; the optimizer never mutates it.
type Config struct {
	Strategy    string
	Grid        Grid
	Folds       FoldConfig
	InitialCash float64
	Risk        risk.Config
	Costs       sim.CostModel
	Workers     int
}

// FoldResult scores one (fold, grid point) task. Skipped tasks record a
// reason instead of metrics and are excluded from aggregation.
type FoldResult struct {
	Fold    Fold
	Params  strategy.Params
	Train   analytics.Metrics
	Test    analytics.Metrics
	Skipped bool
	Reason  string
}

// PointSummary aggregates a grid point's out-of-sample scores across
// every fold it completed.
type PointSummary struct {
	Params          strategy.Params
	MeanSharpe      float64
	MeanMaxDrawdown float64
	Folds           int
}

// Report is the sweep's advisory output: the selected parameter set, the
// per-point aggregates, and the full (fold, point) results table.
type Report struct {
	Strategy  string
	Best      strategy.Params
	Summary   PointSummary
	Points    []PointSummary
	Results   []FoldResult
	Cancelled bool
}

type Optimizer struct {
	cfg  Config
	sink events.Sink
}

type Option func(*Optimizer)

// WithSink routes fold lifecycle events to the given sink.
func WithSink(s events.Sink) Option {
	return func(o *Optimizer) {
		if s != nil {
			o.sink = s
		}
	}
}

func New(cfg Config, opts ...Option) *Optimizer {
	o := &Optimizer{cfg: cfg, sink: events.NopSink{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type task struct {
	fold   Fold
	params strategy.Params
}

// Run sweeps the grid across every fold of the series. Each task owns an
// isolated engine, portfolio and risk manager, so tasks share nothing
// but the read-only series. Cancellation stops scheduling new tasks;
// results for tasks already finished are aggregated and returned.
func (o *Optimizer) Run(ctx context.Context, symbol string, series []types.OHLCV) (*Report, error) {
	if err := types.ValidateSeries(series); err != nil {
		return nil, err
	}
	points, err := o.cfg.Grid.Points()
	if err != nil {
		return nil, err
	}
	folds, err := MakeFolds(len(series), o.cfg.Folds)
	if err != nil {
		return nil, err
	}

	tasks := make([]task, 0, len(folds)*len(points))
	for _, f := range folds {
		for _, p := range points {
			tasks = append(tasks, task{fold: f, params: p})
		}
	}

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FoldResult, len(tasks))
	completed := make([]bool, len(tasks))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	cancelled := false
schedule:
	for i := range tasks {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		select {
		case <-ctx.Done():
			cancelled = true
			break schedule
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.runTask(symbol, series, tasks[i])
			completed[i] = true
		}(i)
	}
	wg.Wait()

	report := &Report{Strategy: o.cfg.Strategy, Cancelled: cancelled}
	for i := range tasks {
		if !completed[i] {
			continue
		}
		report.Results = append(report.Results, results[i])
		o.emitFoldEvent(results[i])
	}

	report.Points = summarize(points, report.Results)
	best, ok := selectBest(report.Points)
	if !ok {
		return report, ErrNoCompletedFolds
	}
	report.Best = best.Params
	report.Summary = best
	return report, nil
}

func (o *Optimizer) runTask(symbol string, series []types.OHLCV, t task) FoldResult {
	res := FoldResult{Fold: t.fold, Params: t.params}

	strat, err := strategy.New(o.cfg.Strategy, t.params)
	if err != nil {
		res.Skipped = true
		res.Reason = err.Error()
		return res
	}

	// The train run lets the strategy prove itself in sample; only the
	// test run's metrics ever rank grid points.
	train, err := o.runSlice(strat, symbol, series[t.fold.TrainStart:t.fold.TrainEnd])
	if err != nil {
		res.Skipped = true
		res.Reason = fmt.Sprintf("insufficient data: train: %v", err)
		return res
	}
	test, err := o.runSlice(strat, symbol, series[t.fold.TestStart:t.fold.TestEnd])
	if err != nil {
		res.Skipped = true
		res.Reason = fmt.Sprintf("insufficient data: test: %v", err)
		return res
	}

	res.Train = train
	res.Test = test
	return res
}

func (o *Optimizer) runSlice(strat strategy.Strategy, symbol string, slice []types.OHLCV) (analytics.Metrics, error) {
	signals, err := strat.GenerateSignals(symbol, slice)
	if err != nil {
		return analytics.Metrics{}, err
	}
	engine := sim.NewEngine(o.cfg.Costs, o.cfg.Risk)
	result, err := engine.Run(symbol, slice, signals, o.cfg.InitialCash)
	if err != nil {
		return analytics.Metrics{}, err
	}
	return analytics.Compute(result.EquityCurve, result.Ledger), nil
}

func (o *Optimizer) emitFoldEvent(r FoldResult) {
	if r.Skipped {
		o.sink.Emit(events.Event{
			Kind:    events.KindFoldSkipped,
			Message: r.Reason,
			Fields:  map[string]float64{"fold": float64(r.Fold.Index)},
		})
		return
	}
	o.sink.Emit(events.Event{
		Kind:    events.KindFoldCompleted,
		Message: r.Params.String(),
		Fields: map[string]float64{
			"fold":         float64(r.Fold.Index),
			"test_sharpe":  r.Test.SharpeRatio,
			"test_max_dd":  r.Test.MaxDrawdown,
			"test_return":  r.Test.TotalReturn,
			"train_sharpe": r.Train.SharpeRatio,
		},
	})
}

// summarize folds the completed results into one aggregate per grid
// point, preserving the deterministic point expansion order.
func summarize(points []strategy.Params, results []FoldResult) []PointSummary {
	sums := make([]PointSummary, len(points))
	for i, p := range points {
		sums[i].Params = p
	}
	index := make(map[string]int, len(points))
	for i, p := range points {
		index[p.String()] = i
	}
	for _, r := range results {
		if r.Skipped {
			continue
		}
		i, ok := index[r.Params.String()]
		if !ok {
			continue
		}
		sums[i].MeanSharpe += r.Test.SharpeRatio
		sums[i].MeanMaxDrawdown += r.Test.MaxDrawdown
		sums[i].Folds++
	}
	for i := range sums {
		if sums[i].Folds > 0 {
			sums[i].MeanSharpe /= float64(sums[i].Folds)
			sums[i].MeanMaxDrawdown /= float64(sums[i].Folds)
		}
	}
	return sums
}

// selectBest picks the arg-max mean out-of-sample Sharpe. Ties fall to
// the lower mean max drawdown, then to the lexicographically smallest
// parameter point, so the winner is unique for a given input.
func selectBest(points []PointSummary) (PointSummary, bool) {
	var best PointSummary
	found := false
	for _, p := range points {
		if p.Folds == 0 {
			continue
		}
		if !found || better(p, best) {
			best = p
			found = true
		}
	}
	return best, found
}

func better(a, b PointSummary) bool {
	if a.MeanSharpe != b.MeanSharpe {
		return a.MeanSharpe > b.MeanSharpe
	}
	if a.MeanMaxDrawdown != b.MeanMaxDrawdown {
		return a.MeanMaxDrawdown < b.MeanMaxDrawdown
	}
	return a.Params.Compare(b.Params) < 0
}
