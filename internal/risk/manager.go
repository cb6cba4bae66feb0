// Package risk sizes new positions against configured limits and runs the
// drawdown circuit breaker for one simulation run. A fresh Manager is
// created per run so no state leaks between runs.
package risk

import (
	"github.com/ducminhle1904/quantsim/pkg/types"
)

// Account is the read-only slice of portfolio state that sizing needs.
// Cash affordability is not a sizing concern: the simulator clamps the
// approved quantity against cash at the slippage-adjusted fill price,
// which sizing never sees.
type Account struct {
	Equity        float64
	GrossExposure float64
}

// Manager combines stateless sizing with the per-run circuit breaker.
type Manager struct {
	cfg     Config
	breaker *Breaker
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		breaker: NewBreaker(cfg.DailyDrawdownLimitPct),
	}
}

// Breaker exposes the run's circuit breaker so the simulator can feed it
// equity marks and record halts.
func (m *Manager) Breaker() *Breaker { return m.breaker }

// Size returns the approved quantity for a position-opening signal.
// The result is zero when the signal is unusable, when limits leave no
// room, or when the breaker is halted. Sizing is deterministic and has
// no side effects beyond the returned decision.
//
// The quantity starts from the per-trade risk budget over the
// stop-distance estimate, then is clamped to the single-position cap
// and the remaining gross-exposure headroom.
func (m *Manager) Size(sig types.Signal, acct Account) float64 {
	if sig.Kind == types.SignalHold || sig.Price <= 0 || acct.Equity <= 0 {
		return 0
	}
	if m.breaker.Halted() {
		return 0
	}

	riskBudget := acct.Equity * m.cfg.MaxRiskPerTradePct
	riskPerUnit := sig.Price * m.cfg.StopDistancePct
	if riskPerUnit <= 0 {
		return 0
	}
	qty := riskBudget / riskPerUnit

	maxNotional := acct.Equity * m.cfg.MaxPositionPct
	if qty*sig.Price > maxNotional {
		qty = maxNotional / sig.Price
	}

	headroom := acct.Equity*m.cfg.MaxPortfolioRiskPct - acct.GrossExposure
	if headroom <= 0 {
		return 0
	}
	if qty*sig.Price > headroom {
		qty = headroom / sig.Price
	}

	if qty <= 0 {
		return 0
	}
	return qty
}
