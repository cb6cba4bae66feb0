package strategy

import (
	"fmt"
	"sort"
	"strings"
)

// Params is one point in a strategy's parameter space. Keys are
// strategy-defined; values are numeric so grids stay uniform.
type Params map[string]float64

// Keys returns the parameter names in sorted order. All ordered
// operations on Params (comparison, formatting) go through this.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Int reads a parameter as an integer, with a default when absent.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

// Float reads a parameter, with a default when absent.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Compare orders parameter points lexicographically: by sorted key
// sequence first, then by the values in that key order. It returns
// -1, 0 or +1 and gives the optimizer its final deterministic tie-break.
func (p Params) Compare(other Params) int {
	ka, kb := p.Keys(), other.Keys()
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if c := strings.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
	}
	if len(ka) != len(kb) {
		if len(ka) < len(kb) {
			return -1
		}
		return 1
	}
	for _, k := range ka {
		switch {
		case p[k] < other[k]:
			return -1
		case p[k] > other[k]:
			return 1
		}
	}
	return 0
}

// String renders "key=value" pairs in sorted key order.
func (p Params) String() string {
	parts := make([]string, 0, len(p))
	for _, k := range p.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%g", k, p[k]))
	}
	return strings.Join(parts, " ")
}
