// Package data loads historical OHLCV series from CSV files and hands
// them to the core fully materialized, validated and time ordered.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/quantsim/pkg/types"
)

// ColumnMapping defines the column positions and timestamp layout of a
// CSV file.
type ColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string // empty means: try common layouts plus unix seconds/millis
}

var DefaultFormat = ColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
}

// Loader reads bar series from CSV. Malformed rows are skipped with a
// warning rather than failing the whole file; structural problems
// (missing file, unreadable CSV, nothing usable) are errors.
type Loader struct {
	format ColumnMapping
	log    *zap.Logger
}

func NewLoader(log *zap.Logger) *Loader {
	return NewLoaderWithFormat(DefaultFormat, log)
}

func NewLoaderWithFormat(format ColumnMapping, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{format: format, log: log}
}

// Load reads the file and returns a strictly ordered series. The result
// passes types.ValidateSeries, so it can feed a run directly.
func (l *Loader) Load(path string) ([]types.OHLCV, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("data: read header of %s: %w", path, err)
	}

	var series []types.OHLCV
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: %s line %d: %w", path, line+1, err)
		}
		line++

		bar, ok := l.parseRow(record, line)
		if !ok {
			continue
		}
		series = append(series, bar)
	}

	series = SortByTimestamp(series)
	series = RemoveDuplicates(series)
	if err := types.ValidateSeries(series); err != nil {
		return nil, fmt.Errorf("data: %s: %w", path, err)
	}
	return series, nil
}

func (l *Loader) parseRow(record []string, line int) (types.OHLCV, bool) {
	f := l.format
	if len(record) < f.MinColumns {
		l.log.Warn("skipping short row",
			zap.Int("line", line), zap.Int("columns", len(record)))
		return types.OHLCV{}, false
	}

	ts, err := l.parseTimestamp(record[f.TimestampCol])
	if err != nil {
		l.log.Warn("skipping row with bad timestamp",
			zap.Int("line", line), zap.String("value", record[f.TimestampCol]))
		return types.OHLCV{}, false
	}

	fields := [5]float64{}
	cols := [5]int{f.OpenCol, f.HighCol, f.LowCol, f.CloseCol, f.VolumeCol}
	for i, col := range cols {
		v, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			l.log.Warn("skipping row with bad number",
				zap.Int("line", line), zap.String("value", record[col]))
			return types.OHLCV{}, false
		}
		fields[i] = v
	}

	bar := types.OHLCV{
		Timestamp: ts,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 || bar.Volume < 0 {
		l.log.Warn("skipping row with non-positive prices", zap.Int("line", line))
		return types.OHLCV{}, false
	}
	if bar.High < bar.Low || bar.High < bar.Open || bar.High < bar.Close ||
		bar.Low > bar.Open || bar.Low > bar.Close {
		l.log.Warn("skipping row with inconsistent OHLC range", zap.Int("line", line))
		return types.OHLCV{}, false
	}
	return bar, true
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (l *Loader) parseTimestamp(value string) (time.Time, error) {
	if l.format.DateFormat != "" {
		return time.Parse(l.format.DateFormat, value)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	// Unix epoch, seconds or milliseconds.
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
