// Package portfolio owns the mutable state of one simulation run: cash,
// open positions and the recorded equity curve. A Portfolio is owned by
// exactly one simulator run and is never shared between runs.
package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

// quantityEpsilon treats residual float dust as a flat position.
const quantityEpsilon = 1e-9

// Position is one open holding. Quantity is signed: positive long,
// negative short. A Position exists only while Quantity is non-zero.
type Position struct {
	Symbol        string
	Quantity      float64
	AvgEntryPrice float64
	OpenedAt      time.Time
}

// Portfolio tracks cash, open positions and the equity curve.
type Portfolio struct {
	cash      float64
	positions map[string]*Position
	curve     []types.EquityPoint
}

func New(initialCash float64) *Portfolio {
	return &Portfolio{
		cash:      initialCash,
		positions: make(map[string]*Position),
	}
}

func (p *Portfolio) Cash() float64 { return p.cash }

// Position returns a copy of the open position for symbol, if any.
func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// OpenSymbols returns the symbols with open positions in sorted order,
// so that every walk over positions is deterministic.
func (p *Portfolio) OpenSymbols() []string {
	symbols := make([]string, 0, len(p.positions))
	for s := range p.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// GrossExposure is the total absolute notional of open positions at the
// given marks. Symbols without a mark contribute their entry notional.
func (p *Portfolio) GrossExposure(marks map[string]float64) float64 {
	total := 0.0
	for _, symbol := range p.OpenSymbols() {
		pos := p.positions[symbol]
		mark, ok := marks[symbol]
		if !ok {
			mark = pos.AvgEntryPrice
		}
		total += math.Abs(pos.Quantity) * mark
	}
	return total
}

// Equity is cash plus the marked value of all open positions. Positions
// are summed in sorted symbol order so the float result is reproducible.
func (p *Portfolio) Equity(marks map[string]float64) float64 {
	equity := p.cash
	for _, symbol := range p.OpenSymbols() {
		pos := p.positions[symbol]
		mark, ok := marks[symbol]
		if !ok {
			mark = pos.AvgEntryPrice
		}
		equity += pos.Quantity * mark
	}
	return equity
}

// MarkToMarket records one equity curve point at the given marks.
func (p *Portfolio) MarkToMarket(ts time.Time, marks map[string]float64) types.EquityPoint {
	point := types.EquityPoint{Timestamp: ts, Equity: p.Equity(marks)}
	p.curve = append(p.curve, point)
	return point
}

// EquityCurve returns the recorded curve in insertion (time) order.
func (p *Portfolio) EquityCurve() []types.EquityPoint { return p.curve }

// ApplyFill executes one fill against cash and the position book and
// returns the immutable trade record. Same-direction increases blend the
// average entry price; reductions realize PnL proportionally; a fill
// larger than the open quantity flips the position sign, with the
// remainder opened at the fill price.
func (p *Portfolio) ApplyFill(ts time.Time, symbol string, side types.Side, qty, fillPrice, commission, slippageCost float64) types.Trade {
	signedQty := qty
	if side == types.SideSell {
		signedQty = -qty
	}

	// Buys debit cash, sells credit it; commission always debits.
	p.cash -= signedQty * fillPrice
	p.cash -= commission

	trade := types.Trade{
		Timestamp:    ts,
		Symbol:       symbol,
		Side:         side,
		Quantity:     qty,
		FillPrice:    fillPrice,
		Commission:   commission,
		SlippageCost: slippageCost,
	}

	pos, exists := p.positions[symbol]
	switch {
	case !exists:
		p.positions[symbol] = &Position{
			Symbol:        symbol,
			Quantity:      signedQty,
			AvgEntryPrice: fillPrice,
			OpenedAt:      ts,
		}

	case sameSign(pos.Quantity, signedQty):
		oldAbs := math.Abs(pos.Quantity)
		pos.AvgEntryPrice = (oldAbs*pos.AvgEntryPrice + qty*fillPrice) / (oldAbs + qty)
		pos.Quantity += signedQty

	default:
		closedQty := math.Min(qty, math.Abs(pos.Quantity))
		direction := 1.0
		if pos.Quantity < 0 {
			direction = -1.0
		}
		trade.RealizedPnL = closedQty * (fillPrice - pos.AvgEntryPrice) * direction
		trade.Closing = true

		pos.Quantity += signedQty
		if math.Abs(pos.Quantity) <= quantityEpsilon {
			delete(p.positions, symbol)
		} else if !sameSign(pos.Quantity, direction) {
			// Sign flip: the remainder is a fresh position at the fill price.
			pos.AvgEntryPrice = fillPrice
			pos.OpenedAt = ts
		}
	}

	return trade
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
