package optimizer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ducminhle1904/quantsim/internal/strategy"
)

var ErrEmptyGrid = errors.New("optimizer: empty parameter grid")

// Grid maps a parameter name to its candidate values. The cartesian
// product of all dimensions is the search space.
type Grid map[string][]float64

// Points expands the grid into the full cartesian product. Dimension
// names are walked in sorted order and values in declaration order, so
// the expansion is deterministic for a given grid.
func (g Grid) Points() ([]strategy.Params, error) {
	if len(g) == 0 {
		return nil, ErrEmptyGrid
	}
	keys := make([]string, 0, len(g))
	for k := range g {
		if len(g[k]) == 0 {
			return nil, fmt.Errorf("%w: dimension %q has no values", ErrEmptyGrid, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := []strategy.Params{{}}
	for _, k := range keys {
		next := make([]strategy.Params, 0, len(points)*len(g[k]))
		for _, base := range points {
			for _, v := range g[k] {
				p := base.Clone()
				p[k] = v
				next = append(next, p)
			}
		}
		points = next
	}
	return points, nil
}
