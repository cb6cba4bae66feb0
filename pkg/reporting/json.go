package reporting

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/quantsim/internal/analytics"
)

// WriteMetricsJSON exports the metrics mapping for dashboard consumers.
// Non-finite values are rendered as strings since JSON has no Inf.
func WriteMetricsJSON(path string, m analytics.Metrics) error {
	out := make(map[string]interface{})
	for name, value := range m.AsMap() {
		switch {
		case math.IsNaN(value):
			out[name] = "nan"
		case math.IsInf(value, 1):
			out[name] = "inf"
		case math.IsInf(value, -1):
			out[name] = "-inf"
		default:
			out[name] = value
		}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
