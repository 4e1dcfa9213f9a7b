package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTemplate = `
name: chat-agent
version: "1.2.0"
description: Chat agent backend

capabilities:
  runtime: docker
  features:
    - redis
  monitoring: true

deploy:
  linode:
    region_default: us-east
    type_default: g6-standard-2
    container:
      image: ghcr.io/acme/chat-agent:1.2.0
      internal_port: 8000
      external_port: 80
      env:
        REDIS_URL: redis://localhost:6379
      health:
        path: /health
        port: 80

env:
  required:
    - name: OPENAI_API_KEY
      description: API key for the chat backend
`

// =============================================================================
// Parse Tests
// =============================================================================

func TestParse_Full(t *testing.T) {
	tpl, err := Parse([]byte(sampleTemplate))
	require.NoError(t, err)

	assert.Equal(t, "chat-agent", tpl.Name)
	assert.Equal(t, "chat-agent", tpl.DisplayName)
	assert.Equal(t, "1.2.0", tpl.Version)
	assert.Equal(t, "docker", tpl.Capabilities.Runtime)
	assert.Equal(t, []string{"redis"}, tpl.Capabilities.Features)
	assert.True(t, tpl.Capabilities.Monitoring)

	container := tpl.Deploy.Linode.Container
	assert.Equal(t, "ghcr.io/acme/chat-agent:1.2.0", container.Image)
	assert.Equal(t, 8000, container.InternalPort)
	assert.Equal(t, 80, container.ExternalPort)
	require.NotNil(t, container.Health)
	assert.Equal(t, "/health", container.Health.Path)

	require.Len(t, tpl.Env.Required, 1)
	assert.Equal(t, "OPENAI_API_KEY", tpl.Env.Required[0].Name)
}

func TestParse_Defaults(t *testing.T) {
	tpl, err := Parse([]byte("deploy:\n  linode:\n    container:\n      image: nginx\n"))
	require.NoError(t, err)

	assert.Equal(t, "unknown", tpl.Name)
	assert.Equal(t, "0.0.0", tpl.Version)
	assert.Equal(t, DefaultInternalPort, tpl.Deploy.Linode.Container.InternalPort)
	assert.Equal(t, DefaultExternalPort, tpl.Deploy.Linode.Container.ExternalPort)
	assert.Nil(t, tpl.Deploy.Linode.Container.Health)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), Filename)
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte(sampleTemplate), 0o644))

	tpl, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "chat-agent", tpl.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no "+Filename)
}
