package types

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptySeries  = errors.New("empty price series")
	ErrNonMonotonic = errors.New("price series timestamps not strictly increasing")
	ErrNonFinite    = errors.New("non-finite or non-positive price")
)

// ValidateSeries checks the input contract the simulator relies on:
// a non-empty series with strictly increasing timestamps and finite,
// positive prices. Gaps between timestamps are permitted.
func ValidateSeries(series []OHLCV) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	for i, bar := range series {
		if !finitePositive(bar.Open) || !finitePositive(bar.High) ||
			!finitePositive(bar.Low) || !finitePositive(bar.Close) {
			return fmt.Errorf("%w: bar %d at %s", ErrNonFinite, i, bar.Timestamp.Format("2006-01-02 15:04:05"))
		}
		if math.IsNaN(bar.Volume) || math.IsInf(bar.Volume, 0) || bar.Volume < 0 {
			return fmt.Errorf("%w: volume at bar %d", ErrNonFinite, i)
		}
		if i > 0 && !series[i-1].Timestamp.Before(bar.Timestamp) {
			return fmt.Errorf("%w: bar %d (%s) not after bar %d (%s)",
				ErrNonMonotonic, i, bar.Timestamp.Format("2006-01-02 15:04:05"),
				i-1, series[i-1].Timestamp.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
