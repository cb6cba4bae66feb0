package types

import "time"

// OHLCV is one price bar for a symbol at a fixed time granularity.
type OHLCV struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// SignalKind is the direction requested by a strategy for one bar.
type SignalKind int

const (
	SignalHold SignalKind = iota
	SignalBuy
	SignalSell
)

func (k SignalKind) String() string {
	switch k {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	case SignalHold:
		return "HOLD"
	default:
		return "UNKNOWN"
	}
}

// Side is the direction of an executed fill.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// Signal is a per-bar trading intent produced by a strategy.
// Signals are immutable; the simulator consumes each one exactly once.
type Signal struct {
	Timestamp  time.Time
	Symbol     string
	Kind       SignalKind
	Price      float64
	Confidence float64 // [0, 1]
	StrategyID string
}

// Trade is one executed fill in the simulated ledger. Trades are
// immutable and append-only.
type Trade struct {
	Timestamp    time.Time
	Symbol       string
	Side         Side
	Quantity     float64
	FillPrice    float64
	Commission   float64
	SlippageCost float64
	RealizedPnL  float64
	// Closing is true when the fill reduced or closed an existing
	// position; only closing trades carry meaningful RealizedPnL.
	Closing bool
}

// EquityPoint is one sample of total portfolio equity.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}
