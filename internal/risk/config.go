package risk

import "fmt"

// Config holds the per-run risk limits. It is immutable for the
// lifetime of a simulation run.
type Config struct {
	// MaxRiskPerTradePct is the fraction of equity put at risk on one
	// trade, measured against the stop-distance estimate.
	MaxRiskPerTradePct float64 `yaml:"max_risk_per_trade_pct" json:"max_risk_per_trade_pct"`
	// MaxPortfolioRiskPct caps gross exposure as a fraction of equity.
	MaxPortfolioRiskPct float64 `yaml:"max_portfolio_risk_pct" json:"max_portfolio_risk_pct"`
	// DailyDrawdownLimitPct trips the circuit breaker when drawdown from
	// the running peak inside the current UTC day exceeds it.
	DailyDrawdownLimitPct float64 `yaml:"daily_drawdown_limit_pct" json:"daily_drawdown_limit_pct"`
	// MaxPositionPct caps a single position's notional as a fraction of equity.
	MaxPositionPct float64 `yaml:"max_position_pct" json:"max_position_pct"`
	// StopDistancePct estimates the stop distance as a fraction of the
	// entry price when the signal carries no explicit stop.
	StopDistancePct float64 `yaml:"stop_distance_pct" json:"stop_distance_pct"`
}

// DefaultConfig mirrors the limits the original paper-trading setup ran with.
func DefaultConfig() Config {
	return Config{
		MaxRiskPerTradePct:    0.02,
		MaxPortfolioRiskPct:   1.0,
		DailyDrawdownLimitPct: 0.05,
		MaxPositionPct:        0.10,
		StopDistancePct:       0.05,
	}
}

func (c Config) Validate() error {
	check := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return fmt.Errorf("risk: %s must be in (0, 1], got %v", name, v)
		}
		return nil
	}
	if err := check("max_risk_per_trade_pct", c.MaxRiskPerTradePct); err != nil {
		return err
	}
	if err := check("max_portfolio_risk_pct", c.MaxPortfolioRiskPct); err != nil {
		return err
	}
	if err := check("daily_drawdown_limit_pct", c.DailyDrawdownLimitPct); err != nil {
		return err
	}
	if err := check("max_position_pct", c.MaxPositionPct); err != nil {
		return err
	}
	return check("stop_distance_pct", c.StopDistancePct)
}
