package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ducminhle1904/quantsim/internal/events"
)

var startTime = time.Now()

// HealthChecker reports sweep liveness: a long walk-forward run is
// healthy while fold results keep arriving. It doubles as an event sink
// so it can sit in the same MultiSink as the exporter.
type HealthChecker struct {
	mu             sync.RWMutex
	lastEvent      time.Time
	foldsCompleted int
	foldsSkipped   int
}

type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	LastEvent      time.Time `json:"last_event,omitempty"`
	FoldsCompleted int       `json:"folds_completed"`
	FoldsSkipped   int       `json:"folds_skipped"`
	Uptime         string    `json:"uptime"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

func (h *HealthChecker) Emit(ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastEvent = time.Now()
	switch ev.Kind {
	case events.KindFoldCompleted:
		h.foldsCompleted++
	case events.KindFoldSkipped:
		h.foldsSkipped++
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if !h.lastEvent.IsZero() && time.Since(h.lastEvent) > 10*time.Minute {
		status = "stalled"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	health := HealthStatus{
		Status:         status,
		Timestamp:      time.Now(),
		LastEvent:      h.lastEvent,
		FoldsCompleted: h.foldsCompleted,
		FoldsSkipped:   h.foldsSkipped,
		Uptime:         time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
