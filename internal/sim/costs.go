package sim

import (
	"math"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

// SlippageModel adjusts the bar close into an executable fill price.
// Buys fill at or above the close, sells at or below it.
type SlippageModel interface {
	FillPrice(bar types.OHLCV, side types.Side, qty float64) float64
}

// PercentSlippage applies a fixed fractional price impact per fill.
type PercentSlippage struct {
	Pct float64
}

func (s PercentSlippage) FillPrice(bar types.OHLCV, side types.Side, qty float64) float64 {
	if side == types.SideBuy {
		return bar.Close * (1 + s.Pct)
	}
	return bar.Close * (1 - s.Pct)
}

// VolumeImpactSlippage scales impact with the fill's share of bar volume,
// on top of a base spread. Bars with no volume fall back to the base.
type VolumeImpactSlippage struct {
	BasePct      float64
	ImpactFactor float64
}

func (s VolumeImpactSlippage) FillPrice(bar types.OHLCV, side types.Side, qty float64) float64 {
	impact := s.BasePct
	if bar.Volume > 0 {
		impact += s.ImpactFactor * (qty / bar.Volume)
	}
	if side == types.SideBuy {
		return bar.Close * (1 + impact)
	}
	return bar.Close * (1 - impact)
}

// CostModel bundles commission and slippage for one run.
type CostModel struct {
	CommissionRate float64
	Slippage       SlippageModel
}

// NewCostModel builds the default percent-slippage cost model.
func NewCostModel(commissionRate, slippagePct float64) CostModel {
	return CostModel{
		CommissionRate: commissionRate,
		Slippage:       PercentSlippage{Pct: slippagePct},
	}
}

// Commission is charged on the filled notional.
func (c CostModel) Commission(qty, fillPrice float64) float64 {
	return qty * fillPrice * c.CommissionRate
}

func (c CostModel) fillPrice(bar types.OHLCV, side types.Side, qty float64) float64 {
	if c.Slippage == nil {
		return bar.Close
	}
	return c.Slippage.FillPrice(bar, side, qty)
}

func slippageCost(barClose, fillPrice, qty float64) float64 {
	return math.Abs(fillPrice-barClose) * qty
}
