package data

import (
	"sort"
	"time"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

// FilterByDateRange keeps bars with start <= timestamp <= end.
func FilterByDateRange(series []types.OHLCV, start, end time.Time) []types.OHLCV {
	var filtered []types.OHLCV
	for _, bar := range series {
		if bar.Timestamp.Before(start) || bar.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, bar)
	}
	return filtered
}

// FilterByPeriod keeps the trailing window of the given length, measured
// back from the last bar.
func FilterByPeriod(series []types.OHLCV, period time.Duration) []types.OHLCV {
	if period <= 0 || len(series) == 0 {
		return series
	}
	cutoff := series[len(series)-1].Timestamp.Add(-period)
	for i, bar := range series {
		if !bar.Timestamp.Before(cutoff) {
			return series[i:]
		}
	}
	return series
}

// SortByTimestamp returns a copy sorted in ascending time order. The
// sort is stable so duplicate timestamps keep their input order for
// RemoveDuplicates.
func SortByTimestamp(series []types.OHLCV) []types.OHLCV {
	sorted := make([]types.OHLCV, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates drops bars repeating an earlier timestamp, keeping
// the first occurrence. Input must already be sorted.
func RemoveDuplicates(series []types.OHLCV) []types.OHLCV {
	if len(series) <= 1 {
		return series
	}
	out := series[:1]
	for _, bar := range series[1:] {
		if bar.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, bar)
	}
	return out
}
