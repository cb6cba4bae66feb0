// Package optimizer implements walk-forward parameter search: a sliding
// train/test fold schedule, a finite parameter grid, and a bounded worker
// pool that scores every (fold, grid point) pair strictly out of sample.
package optimizer

import (
	"errors"
	"fmt"
)

var ErrNoFolds = errors.New("optimizer: fold configuration yields no valid folds")

// FoldConfig describes the sliding window schedule in bar counts.
type FoldConfig struct {
	TrainBars int `yaml:"train_bars" json:"train_bars"`
	TestBars  int `yaml:"test_bars" json:"test_bars"`
	StepBars  int `yaml:"step_bars" json:"step_bars"`
}

func (c FoldConfig) Validate() error {
	if c.TrainBars <= 0 || c.TestBars <= 0 || c.StepBars <= 0 {
		return fmt.Errorf("optimizer: train/test/step bars must all be positive, got %d/%d/%d",
			c.TrainBars, c.TestBars, c.StepBars)
	}
	return nil
}

// Fold is one train/test window pair, expressed as half-open bar index
// ranges into the full price series. Folds never overlap their own test
// slice with their train slice.
type Fold struct {
	Index      int
	TrainStart int
	TrainEnd   int // exclusive; == TestStart
	TestStart  int
	TestEnd    int // exclusive
}

// MakeFolds slides a TrainBars+TestBars window across n bars, advancing
// by StepBars. A trailing window whose test slice does not fully fit is
// discarded.
func MakeFolds(n int, cfg FoldConfig) ([]Fold, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var folds []Fold
	for start := 0; start+cfg.TrainBars+cfg.TestBars <= n; start += cfg.StepBars {
		trainEnd := start + cfg.TrainBars
		folds = append(folds, Fold{
			Index:      len(folds),
			TrainStart: start,
			TrainEnd:   trainEnd,
			TestStart:  trainEnd,
			TestEnd:    trainEnd + cfg.TestBars,
		})
	}
	if len(folds) == 0 {
		return nil, fmt.Errorf("%w: %d bars with train=%d test=%d",
			ErrNoFolds, n, cfg.TrainBars, cfg.TestBars)
	}
	return folds, nil
}
