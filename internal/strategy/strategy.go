// Package strategy holds the closed set of signal generators. Each
// strategy is a pure function from a historical window to a signal
// stream; the simulator, not the strategy, owns execution and risk.
// Strategies register themselves in a package mapping built once at
// init time; there is no runtime registration after startup.
package strategy

import (
	"fmt"
	"sort"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

// Strategy generates per-bar signals from a price series. Generators
// must be causal: the signal at bar i may only depend on bars [0, i].
// At most one signal per timestamp is emitted.
type Strategy interface {
	Name() string
	GenerateSignals(symbol string, series []types.OHLCV) ([]types.Signal, error)
}

// Factory builds a strategy instance from a parameter point.
type Factory func(Params) (Strategy, error)

var registry = map[string]Factory{}

func register(name string, f Factory) {
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("strategy: duplicate registration of %q", name))
	}
	registry[name] = f
}

// New builds a registered strategy by name.
func New(name string, params Params) (Strategy, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("strategy: unknown strategy %q (have %v)", name, Names())
	}
	return f(params)
}

// Names lists the registered strategies in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func closes(series []types.OHLCV) []float64 {
	out := make([]float64, len(series))
	for i, bar := range series {
		out[i] = bar.Close
	}
	return out
}

func makeSignal(bar types.OHLCV, symbol, strategyID string, kind types.SignalKind, confidence float64) types.Signal {
	return types.Signal{
		Timestamp:  bar.Timestamp,
		Symbol:     symbol,
		Kind:       kind,
		Price:      bar.Close,
		Confidence: confidence,
		StrategyID: strategyID,
	}
}
