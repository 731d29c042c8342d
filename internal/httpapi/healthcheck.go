package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/Henry-Berlin/dash-sensor-anzeige/internal/utils"
)

// Probe is a dependency checked by /healthz.
type Probe interface {
	Ping() error
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func() error

func (f ProbeFunc) Ping() error { return f() }

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	probes []Probe
}

func NewHealthchecker(probes []Probe) healthchecker {
	return &healthcheckerImpl{probes: probes}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	for _, p := range h.probes {
		if err := p.Ping(); err != nil {
			slog.Error("healthcheck failed", "error", err)
			utils.WriteError(w, http.StatusServiceUnavailable, "healthcheck failed")
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, probes []Probe) {
	healthchecker := NewHealthchecker(probes)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
