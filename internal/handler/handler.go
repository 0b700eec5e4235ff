package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/angeloszaimis/health-monitor/internal/registry"
	"github.com/angeloszaimis/health-monitor/internal/state"
)

// LivenessResponse is the body of GET /health.
type LivenessResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// LivenessHandler reports that the process is up. It never looks at the
// monitored services.
type LivenessHandler struct {
	startedAt time.Time
	now       func() time.Time
}

func NewLivenessHandler(startedAt time.Time) *LivenessHandler {
	return &LivenessHandler{startedAt: startedAt, now: time.Now}
}

func (h *LivenessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Uptime:    now.Sub(h.startedAt).Seconds(),
	})
}

// ServiceStatus is one entry of GET /status.
type ServiceStatus struct {
	state.Status
	URL string `json:"url"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Healthy  int             `json:"healthy"`
	Total    int             `json:"total"`
	Services []ServiceStatus `json:"services"`
}

// StatusHandler reports the last known health of every monitored service.
type StatusHandler struct {
	registry *registry.Registry
	store    *state.Store
}

func NewStatusHandler(reg *registry.Registry, store *state.Store) *StatusHandler {
	return &StatusHandler{registry: reg, store: store}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	urls := make(map[string]string, h.registry.Len())
	for _, t := range h.registry.Targets() {
		urls[t.Name] = t.URL
	}

	snap := h.store.Snapshot()
	resp := StatusResponse{
		Total:    len(snap),
		Services: make([]ServiceStatus, 0, len(snap)),
	}
	for _, s := range snap {
		if s.Healthy {
			resp.Healthy++
		}
		resp.Services = append(resp.Services, ServiceStatus{Status: s, URL: urls[s.Name]})
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}
