/*
handlers.go - HTTP API handlers for the simulation engine

ENDPOINTS:
  Configs:
    POST   /api/configs                 Load + sanitize + save a config
    GET    /api/configs                 List saved configs
    GET    /api/configs/{id}            Get a saved config
    POST   /api/configs/{id}/sanitize   Preview sanitize without saving
    DELETE /api/configs/{id}            Delete a saved config

  Simulations:
    POST   /api/simulations                Start a run against a saved config
    GET    /api/simulations/{id}           Get run status
    GET    /api/simulations/{id}/frames    Get a run's frame history
    POST   /api/simulations/{id}/cancel    Cancel a running simulation

ARCHITECTURE:
  Handler holds the persistence layer plus the in-memory registry of
  Simulators for runs still in flight — a completed run's frames live
  only in the store, but a live run's Simulator must stay reachable for
  Cancel to have something to act on.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: malformed input, sanitize fatal
  - 404: unknown config/run id
  - 500: internal/store errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/falculator/falculator/config"
	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/sim"
	"github.com/falculator/falculator/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	mu   sync.Mutex
	runs map[string]*sim.Simulator
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store: store,
		runs:  make(map[string]*sim.Simulator),
	}
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// CreateConfig decodes a config.Config from the request body, sanitizes
// it, persists the corrected version, and returns its new id alongside
// whatever corrections Sanitize made. A fatal sanitize error is reported
// as 400 and nothing is persisted.
func (h *Handler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config payload", err)
		return
	}

	corrected, report := cfg.Sanitize()
	if report.Fatal != nil {
		writeError(w, http.StatusBadRequest, "config failed sanitize", report.Fatal)
		return
	}

	id := core.NewIdRegistry().Generate()
	if err := h.Store.SaveConfig(r.Context(), id, corrected); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config", err)
		return
	}

	writeJSON(w, http.StatusCreated, ConfigResponse{
		ID:          id,
		Config:      corrected,
		Corrections: report.Corrections,
	})
}

// ListConfigs returns every saved config's summary.
func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Store.ListConfigs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list configs", err)
		return
	}

	dtos := make([]ConfigSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toConfigSummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetConfig returns a saved config by id.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cfg, err := h.Store.GetConfig(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load config", err)
		return
	}
	if cfg == nil {
		writeError(w, http.StatusNotFound, "config not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{ID: id, Config: cfg})
}

// PreviewSanitize runs Sanitize against the posted config without
// persisting anything, for a GUI that wants to show corrections before
// the user commits to saving.
func (h *Handler) PreviewSanitize(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config payload", err)
		return
	}

	corrected, report := cfg.Sanitize()
	resp := SanitizeResponse{Config: corrected, Corrections: report.Corrections}
	if report.Fatal != nil {
		resp.Fatal = report.Fatal.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteConfig removes a saved config.
func (h *Handler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteConfig(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete config", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SIMULATION HANDLERS
// =============================================================================

// CreateSimulation loads the named config, constructs a Simulator, and
// runs it to completion (or cancellation, or overdraw) synchronously on
// the request goroutine, then persists the whole frame history once Run
// has returned. A long simulation therefore holds the HTTP request open for
// its duration, and GET /api/simulations/{id}/frames shows no frames for
// the run until that history has been written.
func (h *Handler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req CreateSimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	cfg, err := h.Store.GetConfig(r.Context(), req.ConfigID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load config", err)
		return
	}
	if cfg == nil {
		writeError(w, http.StatusNotFound, "config not found", nil)
		return
	}

	runID := core.NewIdRegistry().Generate()
	simulator := sim.New(cfg)
	_, totalSteps := simulator.Progress()

	if err := h.Store.CreateRun(r.Context(), runID, req.ConfigID, totalSteps); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create run", err)
		return
	}

	h.mu.Lock()
	h.runs[runID] = simulator
	h.mu.Unlock()

	status, runErr := h.drive(r.Context(), runID, simulator)

	h.mu.Lock()
	delete(h.runs, runID)
	h.mu.Unlock()

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if err := h.Store.FinishRun(r.Context(), runID, status, errMsg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to finalize run", err)
		return
	}

	rec, err := h.Store.GetRun(r.Context(), runID)
	if err != nil || rec == nil {
		writeError(w, http.StatusInternalServerError, "failed to reload run", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSimulationResponse(rec))
}

// drive blocks until simulator.Run returns, persists the full frame
// history it produced, and classifies the outcome into a
// sqlite.RunStatus. CancelSimulation, called from a concurrent request
// against the same runID, is what makes Run return early; drive itself
// has nothing to poll.
func (h *Handler) drive(ctx context.Context, runID string, simulator *sim.Simulator) (sqlite.RunStatus, error) {
	runErr := simulator.Run(ctx)

	step, _ := simulator.Progress()
	_ = h.Store.UpdateRunProgress(ctx, runID, step)
	frames := simulator.Frames()
	for i, frame := range frames {
		_ = h.Store.AppendFrame(ctx, runID, i, frame)
	}

	switch {
	case errors.Is(runErr, core.ErrCancelled):
		return sqlite.RunCancelled, nil
	case runErr != nil:
		return sqlite.RunFailed, runErr
	case len(frames) > 0 && frames[len(frames)-1].Overdrawn:
		return sqlite.RunOverdrawn, nil
	default:
		return sqlite.RunCompleted, nil
	}
}

// GetSimulation returns a run's current status.
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "run not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSimulationResponse(rec))
}

// ListFrames returns every frame recorded for a run so far, whether or
// not the run has finished.
func (h *Handler) ListFrames(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	frames, err := h.Store.ListFrames(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load frames", err)
		return
	}
	writeJSON(w, http.StatusOK, FramesResponse{RunID: id, Frames: frames})
}

// CancelSimulation requests cooperative cancellation of a run still in
// flight. A run that has already finished (or was never started on this
// process) returns 404 — cancellation only makes sense against a live
// Simulator held in h.runs.
func (h *Handler) CancelSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.Lock()
	simulator, ok := h.runs[id]
	h.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "run not found or already finished", nil)
		return
	}

	simulator.Cancel()
	w.WriteHeader(http.StatusAccepted)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
