package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LoadConfig Tests
// =============================================================================

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "us-east", cfg.Provision.Region)
	assert.Equal(t, "g6-standard-2", cfg.Provision.Type)
	assert.Equal(t, "linode/ubuntu24.04", cfg.Provision.Image)
	assert.Equal(t, 10*time.Minute, cfg.Provision.WaitTimeout)
	assert.Equal(t, 10*time.Second, cfg.Provision.WaitInterval)
	assert.Equal(t, 3, cfg.Poll.Workers)
	assert.Equal(t, 10, cfg.Poll.CallsPerMinute)
	assert.Equal(t, 5*time.Second, cfg.Poll.CacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
linode:
  token: file-token
provision:
  region: eu-west
poll:
  workers: 8
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Linode.Token)
	assert.Equal(t, "eu-west", cfg.Provision.Region)
	assert.Equal(t, 8, cfg.Poll.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, "g6-standard-2", cfg.Provision.Type)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BUILDVM_LINODE_TOKEN", "env-token")
	t.Setenv("BUILDVM_PROVISION_REGION", "ap-south")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Linode.Token)
	assert.Equal(t, "ap-south", cfg.Provision.Region)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "us-east", cfg.Provision.Region)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provision: [broken"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestRegistryConfig_ResolveMetadataPath(t *testing.T) {
	explicit := RegistryConfig{MetadataPath: "/tmp/meta.json"}
	assert.Equal(t, "/tmp/meta.json", explicit.ResolveMetadataPath())

	fallback := RegistryConfig{}
	assert.Contains(t, fallback.ResolveMetadataPath(), "deployment-metadata.json")
}

// =============================================================================
// SetupLogger Tests
// =============================================================================

func TestSetupLogger_Levels(t *testing.T) {
	debug := SetupLogger(&Config{Log: LogConfig{Level: "debug"}})
	assert.True(t, debug.Enabled(context.Background(), slog.LevelDebug))

	warn := SetupLogger(&Config{Log: LogConfig{Level: "warn"}})
	assert.False(t, warn.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, warn.Enabled(context.Background(), slog.LevelWarn))

	unknown := SetupLogger(&Config{Log: LogConfig{Level: "nonsense"}})
	assert.True(t, unknown.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, unknown.Enabled(context.Background(), slog.LevelDebug))
}
