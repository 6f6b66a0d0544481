package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"fmt"           // For wrapping errors with the file path
	"os"            // For file system operations like reading and writing files
	"path/filepath" // For building paths under the XDG state directory
	"time"          // For run start and finish timestamps

	"github.com/adrg/xdg" // For the XDG state directory location

	"setup-devenv/internal/logger" // Custom logger package for logging errors and debug info
)

// AppName is the directory name used under the XDG state home.
const AppName = "setup-devenv"

// Outcome is how a single step ended.
type Outcome string

const (
	Done    Outcome = "done"
	Skipped Outcome = "skipped"
	Warning Outcome = "warning"
	Failed  Outcome = "failed"
)

// StepRecord is the outcome of one pipeline step.
type StepRecord struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// State is the record of the most recent run. It is informational only:
// idempotency comes from inspecting the machine, never from this file.
type State struct {
	Profile    string       `json:"profile"`
	Host       string       `json:"host,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at,omitempty"`
	DryRun     bool         `json:"dry_run,omitempty"`
	Error      string       `json:"error,omitempty"`
	Steps      []StepRecord `json:"steps"`
}

// DefaultPath returns $XDG_STATE_HOME/setup-devenv/state.json.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, AppName, "state.json")
}

// LogPath returns $XDG_STATE_HOME/setup-devenv/setup-devenv.log.
func LogPath() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// Record appends a step outcome.
func (s *State) Record(name string, outcome Outcome, detail string) {
	s.Steps = append(s.Steps, StepRecord{Name: name, Outcome: outcome, Detail: detail})
}

// Warnings returns the steps that ended with a warning.
func (s *State) Warnings() []StepRecord {
	var out []StepRecord
	for _, st := range s.Steps {
		if st.Outcome == Warning {
			out = append(out, st)
		}
	}
	return out
}

// LoadState loads the saved state from a JSON file at the given path.
// A missing file is not an error and yields a nil State.
func LoadState(path string) (*State, error) {
	file, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var st State
	if err := json.Unmarshal(file, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return &st, nil
}

// SaveState writes the given State to path as indented JSON, creating the
// parent directory if needed.
func SaveState(path string, st *State) error {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, file, 0644); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", path, err)
	}
	return nil
}
