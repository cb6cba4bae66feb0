package events

import (
	"sort"

	"go.uber.org/zap"
)

// ZapSink writes events to a zap logger as structured log entries.
type ZapSink struct {
	log *zap.Logger
}

func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log}
}

func (s *ZapSink) Emit(e Event) {
	fields := make([]zap.Field, 0, len(e.Fields)+3)
	fields = append(fields,
		zap.Time("event_time", e.Timestamp),
		zap.String("symbol", e.Symbol),
	)
	if e.Message != "" {
		fields = append(fields, zap.String("detail", e.Message))
	}
	// Sorted keys keep log lines stable across runs.
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Float64(k, e.Fields[k]))
	}
	s.log.Info(string(e.Kind), fields...)
}
