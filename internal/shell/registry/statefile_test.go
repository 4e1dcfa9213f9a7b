package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// State Artifact Tests
// =============================================================================

func sampleState() State {
	return State{
		InstanceID:    12345,
		AppName:       "chat-agent",
		Environment:   "prod",
		DeploymentID:  "abc12345",
		Created:       time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Addresses:     []string{"203.0.113.10"},
		Region:        "us-east",
		InstanceClass: "g6-standard-2",
	}
}

func TestWriteState_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteState(dir, sampleState()))

	got, err := ReadState(dir)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), *got)
}

func TestWriteState_FieldNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteState(dir, sampleState()))

	data, err := os.ReadFile(filepath.Join(dir, StateDirName, "state.json"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"instance_id", "app_name", "environment", "deployment_id",
		"created", "addresses", "region", "instance_class",
	} {
		assert.Contains(t, raw, key)
	}
}

func TestReadState_Missing(t *testing.T) {
	_, err := ReadState(t.TempDir())
	assert.Error(t, err)
}

func TestRemoveState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteState(dir, sampleState()))
	require.NoError(t, RemoveState(dir))

	_, err := ReadState(dir)
	assert.Error(t, err)
}

func TestRemoveState_MissingIsNoop(t *testing.T) {
	assert.NoError(t, RemoveState(t.TempDir()))
}
