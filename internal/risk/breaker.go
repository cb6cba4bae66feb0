package risk

import "time"

// BreakerState is the circuit breaker's two-state machine.
type BreakerState int

const (
	BreakerActive BreakerState = iota
	BreakerHalted
)

func (s BreakerState) String() string {
	if s == BreakerHalted {
		return "HALTED"
	}
	return "ACTIVE"
}

// Breaker halts new position-opening when drawdown from the running peak
// equity within the current UTC calendar day exceeds the limit. HALTED
// still permits closing fills. The state resets only at the day boundary,
// never mid-day.
type Breaker struct {
	limitPct  float64
	state     BreakerState
	day       time.Time
	peak      float64
	hasPeak   bool
	trippedAt time.Time
}

func NewBreaker(limitPct float64) *Breaker {
	return &Breaker{limitPct: limitPct, state: BreakerActive}
}

// Observe feeds one equity mark into the breaker and reports whether this
// observation tripped it. Crossing into a new UTC day resets the window
// peak and re-arms a halted breaker.
func (b *Breaker) Observe(ts time.Time, equity float64) bool {
	day := ts.UTC().Truncate(24 * time.Hour)
	if !b.hasPeak || !day.Equal(b.day) {
		b.day = day
		b.peak = equity
		b.hasPeak = true
		b.state = BreakerActive
		return false
	}

	if equity > b.peak {
		b.peak = equity
	}
	if b.state == BreakerActive && b.peak > 0 {
		drawdown := (b.peak - equity) / b.peak
		if drawdown > b.limitPct {
			b.state = BreakerHalted
			b.trippedAt = ts
			return true
		}
	}
	return false
}

func (b *Breaker) State() BreakerState { return b.state }
func (b *Breaker) Halted() bool        { return b.state == BreakerHalted }

// Drawdown reports the current drawdown from the window peak.
func (b *Breaker) Drawdown(equity float64) float64 {
	if !b.hasPeak || b.peak <= 0 {
		return 0
	}
	return (b.peak - equity) / b.peak
}

// TrippedAt is the timestamp of the last ACTIVE -> HALTED transition.
func (b *Breaker) TrippedAt() time.Time { return b.trippedAt }
