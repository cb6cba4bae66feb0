package strategy

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/quantsim/internal/indicators"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

func init() {
	register("rsi", func(p Params) (Strategy, error) {
		s := &RSIReversal{
			Period:     p.Int("period", 14),
			Oversold:   p.Float("oversold", 30),
			Overbought: p.Float("overbought", 70),
		}
		if s.Period < 2 {
			return nil, fmt.Errorf("rsi: period must be >= 2, got %d", s.Period)
		}
		if s.Oversold >= s.Overbought {
			return nil, fmt.Errorf("rsi: oversold %v must be below overbought %v", s.Oversold, s.Overbought)
		}
		return s, nil
	})
}

// RSIReversal buys when RSI drops into oversold territory and sells when
// it climbs into overbought territory. Only the crossing bar signals, so
// a sustained extreme emits once.
type RSIReversal struct {
	Period     int
	Oversold   float64
	Overbought float64
}

func (s *RSIReversal) Name() string { return "rsi" }

func (s *RSIReversal) GenerateSignals(symbol string, series []types.OHLCV) ([]types.Signal, error) {
	rsi := indicators.RSI(closes(series), s.Period)

	var signals []types.Signal
	prev := 50.0 // neutral baseline so an extreme on the first valid bar still counts as a crossing
	for i := range series {
		cur := rsi[i]
		if math.IsNaN(cur) {
			continue
		}
		switch {
		case prev >= s.Oversold && cur < s.Oversold:
			conf := math.Min(1.0, (s.Oversold-cur)/s.Oversold+0.5)
			signals = append(signals, makeSignal(series[i], symbol, s.Name(), types.SignalBuy, conf))
		case prev <= s.Overbought && cur > s.Overbought:
			conf := math.Min(1.0, (cur-s.Overbought)/(100-s.Overbought)+0.5)
			signals = append(signals, makeSignal(series[i], symbol, s.Name(), types.SignalSell, conf))
		}
		prev = cur
	}
	return signals, nil
}
