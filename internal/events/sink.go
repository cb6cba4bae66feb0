// Package events defines the structured event stream the simulation core
// emits. The core only ever sees the Sink interface; concrete sinks
// (logging, metrics) live at the edges so the core performs no I/O.
package events

import "time"

// Kind identifies the event type.
type Kind string

const (
	KindTradeExecuted  Kind = "trade_executed"
	KindSignalRejected Kind = "signal_rejected"
	KindBreakerTripped Kind = "breaker_tripped"
	KindRunCompleted   Kind = "run_completed"
	KindFoldCompleted  Kind = "fold_completed"
	KindFoldSkipped    Kind = "fold_skipped"
)

// Event is one structured record from a simulation or optimization run.
type Event struct {
	Kind      Kind
	Timestamp time.Time
	Symbol    string
	Message   string
	Fields    map[string]float64
}

// Sink consumes events. Implementations must be safe for concurrent use:
// optimizer workers emit from multiple goroutines.
type Sink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
