package strategy

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/quantsim/internal/indicators"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

func init() {
	register("bollinger", func(p Params) (Strategy, error) {
		s := &BollingerBreakout{
			Period: p.Int("period", 20),
			StdDev: p.Float("std_dev", 2.0),
		}
		if s.Period < 2 || s.StdDev <= 0 {
			return nil, fmt.Errorf("bollinger: need period >= 2 and std_dev > 0, got %d/%v", s.Period, s.StdDev)
		}
		return s, nil
	})
}

// BollingerBreakout buys the first close below the lower band and sells
// the first close above the upper band.
type BollingerBreakout struct {
	Period int
	StdDev float64
}

func (s *BollingerBreakout) Name() string { return "bollinger" }

func (s *BollingerBreakout) GenerateSignals(symbol string, series []types.OHLCV) ([]types.Signal, error) {
	prices := closes(series)
	_, upper, lower := indicators.Bollinger(prices, s.Period, s.StdDev)

	var signals []types.Signal
	outside := false
	for i := range series {
		if math.IsNaN(upper[i]) || math.IsNaN(lower[i]) {
			continue
		}
		switch {
		case prices[i] < lower[i]:
			if !outside {
				signals = append(signals, makeSignal(series[i], symbol, s.Name(), types.SignalBuy, bandConfidence(prices[i], lower[i])))
			}
			outside = true
		case prices[i] > upper[i]:
			if !outside {
				signals = append(signals, makeSignal(series[i], symbol, s.Name(), types.SignalSell, bandConfidence(prices[i], upper[i])))
			}
			outside = true
		default:
			outside = false
		}
	}
	return signals, nil
}

func bandConfidence(price, band float64) float64 {
	if band == 0 {
		return 0.5
	}
	return math.Min(1.0, 0.5+math.Abs(price-band)/math.Abs(band)*20)
}
