package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"apexgo/pkg/core"
)

// Lifecycle is the part of core.Controller the API drives.
type Lifecycle interface {
	Start() error
	Stop()
	StartScenario(name string) error
	Status() core.Status
}

// ControlHandler exposes start, stop and scenario selection.
type ControlHandler struct {
	ctrl Lifecycle
}

func NewControlHandler(ctrl Lifecycle) *ControlHandler {
	return &ControlHandler{ctrl: ctrl}
}

// ScenarioDTO describes one demo scenario.
type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OffsetSec   int    `json:"offset_sec"`
}

// HandleStart begins live ingestion. A bind failure answers 503 with the
// resulting status.
func (h *ControlHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Start(); err != nil {
		writeStatus(w, http.StatusServiceUnavailable, h.ctrl.Status())
		return
	}
	writeStatus(w, http.StatusOK, h.ctrl.Status())
}

// HandleStop stops whatever is running.
func (h *ControlHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Stop()
	writeStatus(w, http.StatusOK, h.ctrl.Status())
}

// HandleScenario starts the scenario named in the path.
func (h *ControlHandler) HandleScenario(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.ctrl.StartScenario(name); err != nil {
		if errors.Is(err, core.ErrUnknownScenario) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeStatus(w, http.StatusOK, h.ctrl.Status())
}

// HandleStatus reports the lifecycle state.
func (h *ControlHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, h.ctrl.Status())
}

// HandleScenarios lists the available demo scenarios.
func (h *ControlHandler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	var out []ScenarioDTO
	for _, s := range core.Scenarios() {
		out = append(out, ScenarioDTO{
			Name:        s.Name,
			Description: s.Description,
			OffsetSec:   int(s.Offset / time.Second),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Error("Failed to encode scenarios response", "error", err)
	}
}

func writeStatus(w http.ResponseWriter, code int, st core.Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(st); err != nil {
		slog.Error("Failed to encode status response", "error", err)
	}
}
