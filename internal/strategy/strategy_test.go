package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

func seriesFromCloses(closes []float64) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		series[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
		}
	}
	return series
}

func TestRegistry(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "ema_crossover")
	assert.Contains(t, names, "rsi")
	assert.Contains(t, names, "bollinger")
	assert.Contains(t, names, "mean_reversion")

	_, err := New("no_such_strategy", nil)
	assert.Error(t, err)
}

func TestFactoryValidation(t *testing.T) {
	_, err := New("ema_crossover", Params{"short_window": 50, "long_window": 20})
	assert.Error(t, err)

	_, err = New("rsi", Params{"oversold": 80, "overbought": 20})
	assert.Error(t, err)

	_, err = New("bollinger", Params{"std_dev": -1})
	assert.Error(t, err)

	_, err = New("mean_reversion", Params{"period": 1})
	assert.Error(t, err)
}

func TestEMACrossover_SignalsAtCross(t *testing.T) {
	s, err := New("ema_crossover", Params{"short_window": 2, "long_window": 4})
	require.NoError(t, err)

	// Downtrend then sharp reversal: short EMA must cross above long.
	closes := []float64{100, 98, 96, 94, 92, 90, 100, 110, 120, 130}
	signals, err := s.GenerateSignals("AAPL", seriesFromCloses(closes))
	require.NoError(t, err)

	require.NotEmpty(t, signals)
	first := signals[0]
	assert.Equal(t, types.SignalBuy, first.Kind)
	assert.Equal(t, "ema_crossover", first.StrategyID)
	assert.Equal(t, "AAPL", first.Symbol)
	// The signal price is the triggering bar's close.
	idx := int(first.Timestamp.Sub(seriesFromCloses(closes)[0].Timestamp).Hours())
	assert.Equal(t, closes[idx], first.Price)
}

func TestRSIReversal_BuysOversold(t *testing.T) {
	s, err := New("rsi", Params{"period": 3, "oversold": 30, "overbought": 70})
	require.NoError(t, err)

	closes := []float64{100, 99, 98, 97, 96, 95, 94, 93, 92, 91}
	signals, err := s.GenerateSignals("AAPL", seriesFromCloses(closes))
	require.NoError(t, err)

	require.NotEmpty(t, signals)
	assert.Equal(t, types.SignalBuy, signals[0].Kind)
	assert.LessOrEqual(t, signals[0].Confidence, 1.0)
	assert.GreaterOrEqual(t, signals[0].Confidence, 0.0)
}

func TestBollinger_BreakoutBelowBuys(t *testing.T) {
	s, err := New("bollinger", Params{"period": 4, "std_dev": 1.5})
	require.NoError(t, err)

	closes := []float64{100, 101, 100, 101, 100, 101, 80, 80, 80}
	signals, err := s.GenerateSignals("AAPL", seriesFromCloses(closes))
	require.NoError(t, err)

	require.NotEmpty(t, signals)
	assert.Equal(t, types.SignalBuy, signals[0].Kind)
	// Staying outside the band must not repeat the signal.
	for _, sig := range signals[1:] {
		assert.NotEqual(t, signals[0].Timestamp, sig.Timestamp)
	}
}

func TestMeanReversion_SellsStretchedAbove(t *testing.T) {
	s, err := New("mean_reversion", Params{"period": 4, "z_threshold": 1.5})
	require.NoError(t, err)

	closes := []float64{100, 100, 101, 100, 100, 101, 100, 130}
	signals, err := s.GenerateSignals("AAPL", seriesFromCloses(closes))
	require.NoError(t, err)

	require.NotEmpty(t, signals)
	last := signals[len(signals)-1]
	assert.Equal(t, types.SignalSell, last.Kind)
}

func TestSignals_AreCausalAndOrdered(t *testing.T) {
	closes := []float64{100, 98, 103, 97, 105, 99, 108, 102, 110, 104, 95, 112, 90, 120}
	series := seriesFromCloses(closes)

	for _, name := range Names() {
		s, err := New(name, nil)
		require.NoError(t, err, name)

		signals, err := s.GenerateSignals("AAPL", series)
		require.NoError(t, err, name)

		for i, sig := range signals {
			if i > 0 {
				assert.True(t, signals[i-1].Timestamp.Before(sig.Timestamp),
					"%s: signals out of order", name)
			}
			assert.Equal(t, "AAPL", sig.Symbol)
			assert.GreaterOrEqual(t, sig.Confidence, 0.0, name)
			assert.LessOrEqual(t, sig.Confidence, 1.0, name)
		}
	}
}

func TestParamsCompare(t *testing.T) {
	a := Params{"a": 1, "b": 2}
	b := Params{"a": 1, "b": 3}
	c := Params{"a": 1, "b": 2}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(c))

	// Key order dominates value order.
	d := Params{"a": 9, "c": 0}
	assert.Equal(t, -1, a.Compare(d)) // "b" < "c"
}

func TestParamsString(t *testing.T) {
	p := Params{"long_window": 50, "short_window": 20}
	assert.Equal(t, "long_window=50 short_window=20", p.String())
}
