// Package sim runs the deterministic trade-execution simulation: it
// consumes price bars and per-bar signals in strict timestamp order,
// asks the risk manager for sizing, mutates the run's portfolio and
// emits an immutable trade ledger plus equity curve. One Engine.Run call
// owns its portfolio and risk state exclusively; runs never share state.
package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ducminhle1904/quantsim/internal/events"
	"github.com/ducminhle1904/quantsim/internal/portfolio"
	"github.com/ducminhle1904/quantsim/internal/risk"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

var (
	ErrSignalMismatch = errors.New("sim: signal timestamp does not align with any bar")
	ErrSignalOrder    = errors.New("sim: signals not in ascending timestamp order")
	ErrBadInitialCash = errors.New("sim: initial cash must be positive and finite")
)

// HaltEvent records one circuit-breaker trip.
type HaltEvent struct {
	Timestamp time.Time
	Drawdown  float64
}

// Result is the immutable output of one simulation run.
type Result struct {
	Ledger      []types.Trade
	EquityCurve []types.EquityPoint
	Final       *portfolio.Portfolio
	Halts       []HaltEvent
	Rejections  int
}

// Engine executes simulation runs with a fixed cost model and risk
// configuration. The engine itself is stateless across runs.
type Engine struct {
	costs   CostModel
	riskCfg risk.Config
	sink    events.Sink
}

type Option func(*Engine)

// WithSink injects the structured event sink. The default discards events.
func WithSink(s events.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

func NewEngine(costs CostModel, riskCfg risk.Config, opts ...Option) *Engine {
	e := &Engine{costs: costs, riskCfg: riskCfg, sink: events.NopSink{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run simulates the signal stream against the price series. Processing is
// strictly sequential by ascending timestamp; out-of-order or non-finite
// input aborts the run. Identical inputs always produce identical ledgers
// and equity curves.
func (e *Engine) Run(symbol string, series []types.OHLCV, signals []types.Signal, initialCash float64) (*Result, error) {
	if err := types.ValidateSeries(series); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if math.IsNaN(initialCash) || math.IsInf(initialCash, 0) || initialCash <= 0 {
		return nil, ErrBadInitialCash
	}
	if err := validateSignals(signals); err != nil {
		return nil, err
	}

	port := portfolio.New(initialCash)
	mgr := risk.NewManager(e.riskCfg)
	result := &Result{Final: port}

	sigIdx := 0
	for _, bar := range series {
		// 1. Mark open positions to this bar and record the equity point.
		marks := map[string]float64{symbol: bar.Close}
		point := port.MarkToMarket(bar.Timestamp, marks)
		if mgr.Breaker().Observe(bar.Timestamp, point.Equity) {
			halt := HaltEvent{
				Timestamp: bar.Timestamp,
				Drawdown:  mgr.Breaker().Drawdown(point.Equity),
			}
			result.Halts = append(result.Halts, halt)
			e.sink.Emit(events.Event{
				Kind:      events.KindBreakerTripped,
				Timestamp: bar.Timestamp,
				Symbol:    symbol,
				Fields:    map[string]float64{"drawdown": halt.Drawdown, "equity": point.Equity},
			})
		}

		// 2. At most one signal per bar; a bar without one is a no-op tick.
		var sig types.Signal
		hasSignal := false
		if sigIdx < len(signals) {
			ts := signals[sigIdx].Timestamp
			if ts.Before(bar.Timestamp) {
				return nil, fmt.Errorf("%w: signal at %s has no matching bar",
					ErrSignalMismatch, ts.Format(time.RFC3339))
			}
			if ts.Equal(bar.Timestamp) {
				sig = signals[sigIdx]
				hasSignal = true
				sigIdx++
			}
		}
		if !hasSignal || sig.Kind == types.SignalHold {
			continue
		}

		e.processSignal(symbol, bar, sig, port, mgr, result)
	}

	if sigIdx < len(signals) {
		return nil, fmt.Errorf("%w: signal at %s past end of series",
			ErrSignalMismatch, signals[sigIdx].Timestamp.Format(time.RFC3339))
	}

	result.Ledger = append([]types.Trade(nil), result.Ledger...)
	result.EquityCurve = port.EquityCurve()
	e.sink.Emit(events.Event{
		Kind:      events.KindRunCompleted,
		Timestamp: series[len(series)-1].Timestamp,
		Symbol:    symbol,
		Fields: map[string]float64{
			"trades":     float64(len(result.Ledger)),
			"rejections": float64(result.Rejections),
			"halts":      float64(len(result.Halts)),
			"final_cash": port.Cash(),
		},
	})
	return result, nil
}

// processSignal resolves one BUY/SELL signal into a closing fill, an
// opening fill, or a recorded rejection.
func (e *Engine) processSignal(symbol string, bar types.OHLCV, sig types.Signal, port *portfolio.Portfolio, mgr *risk.Manager, result *Result) {
	pos, hasPos := port.Position(symbol)

	var side types.Side
	if sig.Kind == types.SignalBuy {
		side = types.SideBuy
	} else {
		side = types.SideSell
	}

	closing := hasPos &&
		((side == types.SideBuy && pos.Quantity < 0) ||
			(side == types.SideSell && pos.Quantity > 0))

	var qty float64
	if closing {
		// Closes are sized to the full open quantity and stay allowed
		// while the breaker is halted.
		qty = math.Abs(pos.Quantity)
	} else {
		marks := map[string]float64{symbol: bar.Close}
		qty = mgr.Size(sig, risk.Account{
			Equity:        port.Equity(marks),
			GrossExposure: port.GrossExposure(marks),
		})
	}

	fillPrice := e.costs.fillPrice(bar, side, qty)

	// Buys must leave cash non-negative after notional plus commission.
	if side == types.SideBuy && qty > 0 {
		affordable := port.Cash() / (fillPrice * (1 + e.costs.CommissionRate))
		if qty > affordable {
			qty = affordable
		}
	}

	if qty <= 0 || (!closing && qty*fillPrice < minFillNotional) {
		result.Rejections++
		e.sink.Emit(events.Event{
			Kind:      events.KindSignalRejected,
			Timestamp: bar.Timestamp,
			Symbol:    symbol,
			Message:   sig.Kind.String(),
			Fields:    map[string]float64{"price": sig.Price, "confidence": sig.Confidence},
		})
		return
	}

	commission := e.costs.Commission(qty, fillPrice)
	trade := port.ApplyFill(bar.Timestamp, symbol, side, qty, fillPrice,
		commission, slippageCost(bar.Close, fillPrice, qty))
	result.Ledger = append(result.Ledger, trade)
	e.sink.Emit(events.Event{
		Kind:      events.KindTradeExecuted,
		Timestamp: bar.Timestamp,
		Symbol:    symbol,
		Message:   side.String(),
		Fields: map[string]float64{
			"quantity":     qty,
			"fill_price":   fillPrice,
			"commission":   commission,
			"realized_pnl": trade.RealizedPnL,
		},
	})
}

// minFillNotional discards dust-sized openings that only churn commission.
const minFillNotional = 1e-6

func validateSignals(signals []types.Signal) error {
	for i := 1; i < len(signals); i++ {
		if !signals[i-1].Timestamp.Before(signals[i].Timestamp) {
			return fmt.Errorf("%w: signal %d at %s", ErrSignalOrder,
				i, signals[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
