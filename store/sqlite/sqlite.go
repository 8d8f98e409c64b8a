/*
Package sqlite provides the SQLite-backed persistence layer behind the
HTTP API: saved Config documents and the frame history of completed or
in-progress simulation runs.

This is a server-side datastore sitting behind api/, distinct from the
GUI's own "JSON file on disk with rolling backups" persistence, which
remains an external collaborator out of scope for this core (spec §1).

KEY TABLES:
  configs:     one row per saved config.Config, JSON-encoded
  sim_runs:    one row per Simulator invocation against a saved config
  sim_frames:  one row per SimFrame a run has produced, JSON-encoded

CONCURRENCY:
  A sync.RWMutex guards every statement, mirroring the teacher's own
  Store — SQLite's single-writer model means this buys little beyond
  serializing access from this process, but it keeps the shape identical to
  the teacher's for anyone reading both side by side.

WAL MODE:
  Opened with WAL for concurrent readers during a long-running
  simulation write.

MIGRATION:
  Schema is auto-migrated on New(), exactly as the teacher's store does;
  for a production deployment this would move to a versioned migration
  tool (golang-migrate, goose) the way the teacher's own doc comment
  recommends.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/falculator/falculator/config"
	"github.com/falculator/falculator/sim"
)

// Store is the SQLite-backed persistence layer for configs and simulation
// run histories.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if necessary) a SQLite database at dbPath and
// migrates its schema. Use ":memory:" for an ephemeral database, the same
// convention the teacher's store documents.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS configs (
		id TEXT PRIMARY KEY,
		sim_name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_runs (
		id TEXT PRIMARY KEY,
		config_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'running',
		total_steps INTEGER NOT NULL DEFAULT 0,
		step_index INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sim_runs_config
		ON sim_runs(config_id);

	CREATE TABLE IF NOT EXISTS sim_frames (
		run_id TEXT NOT NULL,
		step_index INTEGER NOT NULL,
		frame_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (run_id, step_index)
	);

	CREATE INDEX IF NOT EXISTS idx_sim_frames_run
		ON sim_frames(run_id, step_index);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONFIG STORE
// =============================================================================

// SaveConfig inserts or updates a saved config.Config under id.
func (s *Store) SaveConfig(ctx context.Context, id string, cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO configs (id, sim_name, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sim_name = excluded.sim_name,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, id, cfg.SimName, string(blob), now, now)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// GetConfig loads a previously saved config.Config by id. Returns
// (nil, nil) when no such id exists.
func (s *Store) GetConfig(ctx context.Context, id string) (*config.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT config_json FROM configs WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// ConfigSummary is the listing row for GET /api/configs.
type ConfigSummary struct {
	ID        string
	SimName   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListConfigs returns a summary of every saved config, newest first.
func (s *Store) ListConfigs(ctx context.Context) ([]ConfigSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sim_name, created_at, updated_at FROM configs ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConfigSummary
	for rows.Next() {
		var sum ConfigSummary
		var created, updated string
		if err := rows.Scan(&sum.ID, &sum.SimName, &created, &updated); err != nil {
			return nil, err
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339, created)
		sum.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteConfig removes a saved config. Existing sim_runs referencing it
// are left untouched — a run's frame history is a record of what already
// happened, independent of whether the config that produced it still
// exists.
func (s *Store) DeleteConfig(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM configs WHERE id = ?`, id)
	return err
}

// =============================================================================
// SIMULATION RUN STORE
// =============================================================================

// RunStatus tracks a sim_runs row's lifecycle.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunOverdrawn RunStatus = "overdrawn"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one sim_runs row.
type RunRecord struct {
	ID          string
	ConfigID    string
	Status      RunStatus
	TotalSteps  int
	StepIndex   int
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// CreateRun inserts a new sim_runs row in the Running state.
func (s *Store) CreateRun(ctx context.Context, runID, configID string, totalSteps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sim_runs (id, config_id, status, total_steps, step_index, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, runID, configID, string(RunRunning), totalSteps, time.Now().UTC().Format(time.RFC3339))
	return err
}

// UpdateRunProgress records a run's step index. The API handler calls it
// once, after the simulation loop returns.
func (s *Store) UpdateRunProgress(ctx context.Context, runID string, stepIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `UPDATE sim_runs SET step_index = ? WHERE id = ?`, stepIndex, runID)
	return err
}

// FinishRun marks a run terminal: completed, cancelled, overdrawn, or
// failed (with runErr carrying the failure detail, empty otherwise).
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, runErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE sim_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?
	`, string(status), nullableString(runErr), time.Now().UTC().Format(time.RFC3339), runID)
	return err
}

// GetRun loads a sim_runs row by id. Returns (nil, nil) if absent.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r RunRecord
	var status, created string
	var completed, errMsg sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, config_id, status, total_steps, step_index, error, created_at, completed_at
		FROM sim_runs WHERE id = ?
	`, runID).Scan(&r.ID, &r.ConfigID, &status, &r.TotalSteps, &r.StepIndex, &errMsg, &created, &completed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Status = RunStatus(status)
	r.Error = errMsg.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	if completed.Valid {
		t, _ := time.Parse(time.RFC3339, completed.String)
		r.CompletedAt = &t
	}
	return &r, nil
}

// AppendFrame persists one SimFrame for runID at stepIndex. Re-running
// AppendFrame for a step index already recorded overwrites it, matching
// Simulator's own single-tick-at-a-time production (a step index is only
// ever produced once per run, so this is append-only in practice).
func (s *Store) AppendFrame(ctx context.Context, runID string, stepIndex int, frame sim.SimFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sim_frames (run_id, step_index, frame_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, step_index) DO UPDATE SET frame_json = excluded.frame_json
	`, runID, stepIndex, string(blob), time.Now().UTC().Format(time.RFC3339))
	return err
}

// ListFrames returns every frame recorded for runID, in step order.
func (s *Store) ListFrames(ctx context.Context, runID string) ([]sim.SimFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT frame_json FROM sim_frames WHERE run_id = ? ORDER BY step_index ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []sim.SimFrame
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var frame sim.SimFrame
		if err := json.Unmarshal([]byte(blob), &frame); err != nil {
			return nil, fmt.Errorf("failed to decode frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

// ListRunsByConfig returns every run recorded against configID, newest
// first, for the GUI's "past runs of this config" view.
func (s *Store) ListRunsByConfig(ctx context.Context, configID string) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_id, status, total_steps, step_index, error, created_at, completed_at
		FROM sim_runs WHERE config_id = ? ORDER BY created_at DESC
	`, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var status, created string
		var completed, errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.ConfigID, &status, &r.TotalSteps, &r.StepIndex, &errMsg, &created, &completed); err != nil {
			return nil, err
		}
		r.Status = RunStatus(status)
		r.Error = errMsg.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		if completed.Valid {
			t, _ := time.Parse(time.RFC3339, completed.String)
			r.CompletedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Reset clears every table, used by tests the way the teacher's own
// Reset resets its demo data between scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"sim_frames", "sim_runs", "configs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueConstraintError reports whether err is a SQLite UNIQUE
// constraint violation, grounded on the teacher store's own substring
// check (sqlite3's driver error type isn't always comparable across
// builds, so both stores match on the message text).
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
