package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// Local Deployment-State Artifact
// =============================================================================

// StateDirName is the per-project directory holding the state artifact.
const StateDirName = ".buildvm"

// stateFileName is the artifact written for companion tooling so it can
// locate a deployment without re-querying the registry.
const stateFileName = "state.json"

// State is the local deployment-state artifact.
type State struct {
	InstanceID    int       `json:"instance_id"`
	AppName       string    `json:"app_name"`
	Environment   string    `json:"environment"`
	DeploymentID  string    `json:"deployment_id"`
	Created       time.Time `json:"created"`
	Addresses     []string  `json:"addresses"`
	Region        string    `json:"region"`
	InstanceClass string    `json:"instance_class"`
}

func statePath(dir string) string {
	return filepath.Join(dir, StateDirName, stateFileName)
}

// WriteState persists the state artifact under dir/.buildvm/state.json.
func WriteState(dir string, state State) error {
	stateDir := filepath.Join(dir, StateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(statePath(dir), data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// ReadState loads the state artifact from a project directory.
func ReadState(dir string) (*State, error) {
	data, err := os.ReadFile(statePath(dir))
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &state, nil
}

// RemoveState deletes the state artifact. A missing artifact is not an error.
func RemoveState(dir string) error {
	err := os.Remove(statePath(dir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state: %w", err)
	}
	return nil
}
