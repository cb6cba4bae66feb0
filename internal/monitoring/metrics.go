package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ducminhle1904/quantsim/internal/events"
)

var (
	// Simulation metrics
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantsim_trades_total",
			Help: "Total number of simulated fills",
		},
		[]string{"symbol"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantsim_signal_rejections_total",
			Help: "Signals rejected by risk sizing",
		},
		[]string{"symbol"},
	)

	breakerTripsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantsim_breaker_trips_total",
			Help: "Circuit breaker trips across all runs",
		},
		[]string{"symbol"},
	)

	runsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quantsim_runs_total",
			Help: "Completed simulation runs",
		},
	)

	// Optimizer metrics
	foldsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quantsim_folds_completed_total",
			Help: "Walk-forward fold tasks completed",
		},
	)

	foldsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quantsim_folds_skipped_total",
			Help: "Walk-forward fold tasks skipped for insufficient data",
		},
	)

	foldTestSharpe = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantsim_fold_test_sharpe",
			Help:    "Distribution of out-of-sample Sharpe ratios",
			Buckets: prometheus.LinearBuckets(-3, 0.5, 13),
		},
	)
)

func init() {
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(rejectionsTotal)
	prometheus.MustRegister(breakerTripsTotal)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(foldsCompleted)
	prometheus.MustRegister(foldsSkipped)
	prometheus.MustRegister(foldTestSharpe)
}

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct{}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// PromSink bridges core events into the Prometheus registry. The core
// stays free of metrics dependencies; callers hang this sink off the
// engine or optimizer when an exporter is running.
type PromSink struct{}

func NewPromSink() *PromSink {
	return &PromSink{}
}

func (PromSink) Emit(ev events.Event) {
	switch ev.Kind {
	case events.KindTradeExecuted:
		tradesTotal.WithLabelValues(ev.Symbol).Inc()
	case events.KindSignalRejected:
		rejectionsTotal.WithLabelValues(ev.Symbol).Inc()
	case events.KindBreakerTripped:
		breakerTripsTotal.WithLabelValues(ev.Symbol).Inc()
	case events.KindRunCompleted:
		runsTotal.Inc()
	case events.KindFoldCompleted:
		foldsCompleted.Inc()
		if sharpe, ok := ev.Fields["test_sharpe"]; ok {
			foldTestSharpe.Observe(sharpe)
		}
	case events.KindFoldSkipped:
		foldsSkipped.Inc()
	}
}
