package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadValidFile(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,volume
2024-01-01 00:00:00,100,105,99,104,1200
2024-01-01 01:00:00,104,106,103,105,900
2024-01-01 02:00:00,105,107,104,106,1500
`)

	series, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, 100.0, series[0].Open)
	assert.Equal(t, 106.0, series[2].Close)
	assert.True(t, series[0].Timestamp.Before(series[1].Timestamp))
}

func TestLoader_SkipsMalformedRows(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,volume
2024-01-01 00:00:00,100,105,99,104,1200
not-a-date,104,106,103,105,900
2024-01-01 01:00:00,abc,106,103,105,900
2024-01-01 02:00:00,105,107,104,106,1500
2024-01-01 03:00:00,105,100,104,106,1500
`)

	series, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	// Bad date, bad number and high<low rows are dropped.
	require.Len(t, series, 2)
}

func TestLoader_SortsAndDeduplicates(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,volume
2024-01-01 02:00:00,105,107,104,106,1500
2024-01-01 00:00:00,100,105,99,104,1200
2024-01-01 02:00:00,200,205,199,204,100
2024-01-01 01:00:00,104,106,103,105,900
`)

	series, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	require.Len(t, series, 3)
	require.NoError(t, types.ValidateSeries(series))
	assert.Equal(t, 105.0, series[2].Open)
}

func TestLoader_UnixMillisTimestamps(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,volume
1704067200000,100,105,99,104,1200
1704070800000,104,106,103,105,900
`)

	series, err := NewLoader(nil).Load(path)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series[0].Timestamp)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoader_EmptyFileIsError(t *testing.T) {
	path := writeCSV(t, "timestamp,open,high,low,close,volume\n")
	_, err := NewLoader(nil).Load(path)
	assert.ErrorIs(t, err, types.ErrEmptySeries)
}

func TestFilterByDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]types.OHLCV, 10)
	for i := range series {
		series[i] = types.OHLCV{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: 1, High: 1, Low: 1, Close: 1}
	}

	got := FilterByDateRange(series, start.Add(2*time.Hour), start.Add(5*time.Hour))
	assert.Len(t, got, 4)
	assert.Equal(t, start.Add(2*time.Hour), got[0].Timestamp)
}

func TestFilterByPeriod(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]types.OHLCV, 10)
	for i := range series {
		series[i] = types.OHLCV{Timestamp: start.Add(time.Duration(i) * time.Hour)}
	}

	got := FilterByPeriod(series, 3*time.Hour)
	assert.Len(t, got, 4)
	assert.Equal(t, series[6].Timestamp, got[0].Timestamp)
}
