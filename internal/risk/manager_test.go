package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

func testConfig() Config {
	return Config{
		MaxRiskPerTradePct:    0.02,
		MaxPortfolioRiskPct:   1.0,
		DailyDrawdownLimitPct: 0.20,
		MaxPositionPct:        0.10,
		StopDistancePct:       0.05,
	}
}

func buySignal(price float64) types.Signal {
	return types.Signal{
		Timestamp:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Symbol:     "AAPL",
		Kind:       types.SignalBuy,
		Price:      price,
		Confidence: 1.0,
		StrategyID: "test",
	}
}

func TestSize_ClampedToMaxPositionPct(t *testing.T) {
	m := NewManager(testConfig())

	// Risk budget alone would allow 10000*0.02/(50*0.05) = 80 units
	// (4000 notional); the 10% position cap downsizes to exactly
	// 1000/price units.
	qty := m.Size(buySignal(50.0), Account{Equity: 10000})

	assert.InDelta(t, 1000.0/50.0, qty, 1e-9)
}

func TestSize_RiskBudgetBindsFirst(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPositionPct = 1.0 // cap out of the way
	m := NewManager(cfg)

	qty := m.Size(buySignal(100.0), Account{Equity: 10000})

	// 10000 * 0.02 / (100 * 0.05) = 40 units.
	assert.InDelta(t, 40.0, qty, 1e-9)
}

func TestSize_ExposureHeadroom(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPortfolioRiskPct = 0.50
	m := NewManager(cfg)

	// 50% of 10000 equity = 5000 gross cap; 4600 already deployed.
	qty := m.Size(buySignal(100.0), Account{Equity: 10000, GrossExposure: 4600})
	assert.InDelta(t, 4.0, qty, 1e-9)

	// No headroom left at all.
	qty = m.Size(buySignal(100.0), Account{Equity: 10000, GrossExposure: 5000})
	assert.Equal(t, 0.0, qty)
}

func TestSize_RejectsUnusableInput(t *testing.T) {
	m := NewManager(testConfig())

	sig := buySignal(100.0)
	sig.Kind = types.SignalHold
	assert.Equal(t, 0.0, m.Size(sig, Account{Equity: 10000}))

	sig = buySignal(0)
	assert.Equal(t, 0.0, m.Size(sig, Account{Equity: 10000}))

	assert.Equal(t, 0.0, m.Size(buySignal(100.0), Account{Equity: 0}))
}

func TestBreaker_TripsPastLimit(t *testing.T) {
	b := NewBreaker(0.20)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, b.Observe(day.Add(1*time.Hour), 10000))
	assert.False(t, b.Observe(day.Add(2*time.Hour), 9000)) // 10% down
	assert.True(t, b.Observe(day.Add(3*time.Hour), 7500))  // 25% down
	assert.True(t, b.Halted())
	assert.Equal(t, day.Add(3*time.Hour), b.TrippedAt())

	// Further marks stay halted without re-tripping.
	assert.False(t, b.Observe(day.Add(4*time.Hour), 7000))
	assert.True(t, b.Halted())
}

func TestBreaker_ResetsAtDayBoundaryOnly(t *testing.T) {
	b := NewBreaker(0.20)
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	b.Observe(day1.Add(1*time.Hour), 10000)
	b.Observe(day1.Add(2*time.Hour), 7000)
	assert.True(t, b.Halted())

	// Recovery inside the same day never re-arms.
	b.Observe(day1.Add(5*time.Hour), 9900)
	assert.True(t, b.Halted())

	// Next UTC day re-arms and starts a fresh peak.
	day2 := day1.Add(24 * time.Hour)
	assert.False(t, b.Observe(day2.Add(1*time.Hour), 7000))
	assert.False(t, b.Halted())
	assert.Equal(t, BreakerActive, b.State())
}

func TestSize_ZeroWhileHalted(t *testing.T) {
	m := NewManager(testConfig())
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	m.Breaker().Observe(day.Add(1*time.Hour), 10000)
	m.Breaker().Observe(day.Add(2*time.Hour), 7500)
	assert.True(t, m.Breaker().Halted())

	qty := m.Size(buySignal(100.0), Account{Equity: 7500})
	assert.Equal(t, 0.0, qty)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MaxPositionPct = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.StopDistancePct = 1.5
	assert.Error(t, bad.Validate())
}
