package strategy

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/quantsim/internal/indicators"
	"github.com/ducminhle1904/quantsim/pkg/types"
)

func init() {
	register("mean_reversion", func(p Params) (Strategy, error) {
		s := &MeanReversion{
			Period:    p.Int("period", 20),
			Threshold: p.Float("z_threshold", 1.5),
		}
		if s.Period < 2 || s.Threshold <= 0 {
			return nil, fmt.Errorf("mean_reversion: need period >= 2 and z_threshold > 0, got %d/%v", s.Period, s.Threshold)
		}
		return s, nil
	})
}

// MeanReversion trades the z-score of price against its rolling mean:
// buy when stretched below, sell when stretched above.
type MeanReversion struct {
	Period    int
	Threshold float64
}

func (s *MeanReversion) Name() string { return "mean_reversion" }

func (s *MeanReversion) GenerateSignals(symbol string, series []types.OHLCV) ([]types.Signal, error) {
	prices := closes(series)
	mean := indicators.SMA(prices, s.Period)
	std := indicators.RollingStd(prices, s.Period)

	var signals []types.Signal
	stretched := false
	for i := range series {
		if math.IsNaN(mean[i]) || math.IsNaN(std[i]) || std[i] == 0 {
			stretched = false
			continue
		}
		z := (prices[i] - mean[i]) / std[i]
		switch {
		case z < -s.Threshold:
			if !stretched {
				signals = append(signals, makeSignal(series[i], symbol, s.Name(), types.SignalBuy, zConfidence(z, s.Threshold)))
			}
			stretched = true
		case z > s.Threshold:
			if !stretched {
				signals = append(signals, makeSignal(series[i], symbol, s.Name(), types.SignalSell, zConfidence(z, s.Threshold)))
			}
			stretched = true
		default:
			stretched = false
		}
	}
	return signals, nil
}

func zConfidence(z, threshold float64) float64 {
	return math.Min(1.0, math.Abs(z)/(threshold*2))
}
