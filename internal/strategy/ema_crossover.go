package strategy

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/quantsim/internal/indicators"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

func init() {
	register("ema_crossover", func(p Params) (Strategy, error) {
		s := &EMACrossover{
			Short: p.Int("short_window", 20),
			Long:  p.Int("long_window", 50),
		}
		if s.Short <= 0 || s.Long <= 0 || s.Short >= s.Long {
			return nil, fmt.Errorf("ema_crossover: need 0 < short_window < long_window, got %d/%d", s.Short, s.Long)
		}
		return s, nil
	})
}

// EMACrossover buys when the short EMA crosses above the long EMA and
// sells when it crosses back below.
type EMACrossover struct {
	Short int
	Long  int
}

func (s *EMACrossover) Name() string { return "ema_crossover" }

func (s *EMACrossover) GenerateSignals(symbol string, series []types.OHLCV) ([]types.Signal, error) {
	prices := closes(series)
	short := indicators.EMA(prices, s.Short)
	long := indicators.EMA(prices, s.Long)

	var signals []types.Signal
	prevAbove := false
	havePrev := false
	for i := range series {
		if math.IsNaN(short[i]) || math.IsNaN(long[i]) {
			continue
		}
		above := short[i] > long[i]
		if havePrev && above != prevAbove {
			kind := types.SignalSell
			if above {
				kind = types.SignalBuy
			}
			signals = append(signals, makeSignal(series[i], symbol, s.Name(), kind, crossoverConfidence(short[i], long[i])))
		}
		prevAbove = above
		havePrev = true
	}
	return signals, nil
}

// crossoverConfidence scales with the relative EMA separation, capped at 1.
func crossoverConfidence(short, long float64) float64 {
	if long == 0 {
		return 0.5
	}
	sep := math.Abs(short-long) / math.Abs(long)
	return math.Min(1.0, 0.5+sep*10)
}
