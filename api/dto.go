/*
dto.go - Data Transfer Objects for API requests and responses

Decouples the internal config/sim model from the external API contract.
config.Config and sim.SimFrame are already plain JSON-tagged structs, so
most responses wrap them directly rather than re-declaring every field;
the DTOs here exist where the wire shape genuinely differs from the
domain type (an id the domain type doesn't carry itself, a status string,
a sanitize report).
*/
package api

import (
	"time"

	"github.com/falculator/falculator/config"
	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/sim"
	"github.com/falculator/falculator/store/sqlite"
)

// =============================================================================
// CONFIG
// =============================================================================

// ConfigResponse wraps a saved config.Config with its storage id and the
// corrections Sanitize applied when it was last saved.
type ConfigResponse struct {
	ID          string                         `json:"id"`
	Config      *config.Config                 `json:"config"`
	Corrections []core.SanitizationCorrection  `json:"corrections,omitempty"`
	CreatedAt   string                         `json:"created_at,omitempty"`
	UpdatedAt   string                         `json:"updated_at,omitempty"`
}

// ConfigSummaryDTO is one row of GET /api/configs.
type ConfigSummaryDTO struct {
	ID        string `json:"id"`
	SimName   string `json:"sim_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toConfigSummaryDTO(s sqlite.ConfigSummary) ConfigSummaryDTO {
	return ConfigSummaryDTO{
		ID:        s.ID,
		SimName:   s.SimName,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

// SanitizeResponse is the preview-only result of POST
// /api/configs/{id}/sanitize: what Sanitize would change, without
// persisting the corrected Config.
type SanitizeResponse struct {
	Config      *config.Config                `json:"config"`
	Corrections []core.SanitizationCorrection `json:"corrections"`
	Fatal       string                        `json:"fatal,omitempty"`
}

// =============================================================================
// SIMULATION
// =============================================================================

// CreateSimulationRequest starts a run against a previously saved config.
type CreateSimulationRequest struct {
	ConfigID string `json:"config_id"`
}

// SimulationResponse is the state of one simulation run.
type SimulationResponse struct {
	ID         string `json:"id"`
	ConfigID   string `json:"config_id"`
	Status     string `json:"status"`
	StepIndex  int    `json:"step_index"`
	TotalSteps int    `json:"total_steps"`
	Error      string `json:"error,omitempty"`
}

func toSimulationResponse(r *sqlite.RunRecord) SimulationResponse {
	return SimulationResponse{
		ID:         r.ID,
		ConfigID:   r.ConfigID,
		Status:     string(r.Status),
		StepIndex:  r.StepIndex,
		TotalSteps: r.TotalSteps,
		Error:      r.Error,
	}
}

// FramesResponse is the body of GET /api/simulations/{id}/frames.
type FramesResponse struct {
	RunID  string         `json:"run_id"`
	Frames []sim.SimFrame `json:"frames"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
