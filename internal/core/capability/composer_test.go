package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Conflict Tests
// =============================================================================

func TestAdd_ConflictNvidiaThenAMD(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Add(NameGPUNvidia))

	err := c.Add(NameGPUAMD)
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, NameGPUAMD, conflict.Adding)
	assert.Equal(t, NameGPUNvidia, conflict.Existing)
}

func TestAdd_ConflictAMDThenNvidia(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Add(NameGPUAMD))

	err := c.Add(NameGPUNvidia)
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, NameGPUNvidia, conflict.Adding)
	assert.Equal(t, NameGPUAMD, conflict.Existing)
}

func TestAdd_NoConflictBetweenUnrelated(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Add(NameDocker))
	require.NoError(t, c.Add(NameRedis))
	require.NoError(t, c.Add(NameGPUNvidia))
}

func TestAdd_UnknownName(t *testing.T) {
	c := NewComposer()

	err := c.Add("quantum-accelerator")
	require.Error(t, err)

	var unknown *UnknownCapabilityError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "quantum-accelerator", unknown.Name)
	assert.Contains(t, err.Error(), "docker")
}

// =============================================================================
// Ordering Tests
// =============================================================================

func TestAddMonitoring_AlwaysFirst(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Add(NameDocker))
	require.NoError(t, c.Add(NameRedis))
	require.NoError(t, c.AddMonitoring("abc12345", "chat-agent"))

	names := c.Names()
	require.Len(t, names, 3)
	assert.Equal(t, NameMonitoring, names[0])
	assert.Equal(t, NameDocker, names[1])
	assert.Equal(t, NameRedis, names[2])
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Add(NameRedis))
	require.NoError(t, c.Add("python-3.11"))
	require.NoError(t, c.Add(NameDocker))

	assert.Equal(t, []string{NameRedis, "python-3.11", NameDocker}, c.Names())
}

// =============================================================================
// Compose Tests
// =============================================================================

func TestCompose_ConcatenatesWithoutDedup(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Add(NameRedis))
	require.NoError(t, c.AddCustomPackages([]string{"redis-server", "curl"}))

	combined := c.Compose()
	// redis contributes redis-server; the custom list repeats it.
	occurrences := 0
	for _, pkg := range combined.Packages {
		if pkg == "redis-server" {
			occurrences++
		}
	}
	assert.Equal(t, 2, occurrences)
}

func TestCompose_Deterministic(t *testing.T) {
	build := func() FragmentSet {
		c := NewComposer()
		require.NoError(t, c.Add(NameDocker))
		require.NoError(t, c.Add("python-3.11"))
		require.NoError(t, c.AddMonitoring("abc12345", "api"))
		return c.Compose()
	}

	assert.Equal(t, build(), build())
}

func TestCompose_Empty(t *testing.T) {
	c := NewComposer()
	combined := c.Compose()
	assert.Empty(t, combined.Packages)
	assert.Empty(t, combined.BootCmds)
	assert.Empty(t, combined.RunCmds)
	assert.Empty(t, combined.Files)
}

func TestRequiresGPU(t *testing.T) {
	c := NewComposer()
	require.NoError(t, c.Add(NameDocker))
	assert.False(t, c.RequiresGPU())

	require.NoError(t, c.Add(NameGPUNvidia))
	assert.True(t, c.RequiresGPU())
}

// =============================================================================
// FromSpec Tests
// =============================================================================

func TestFromSpec_Full(t *testing.T) {
	c, err := FromSpec(Spec{
		Runtime:    "docker",
		Features:   []string{NameRedis},
		Packages:   []string{"htop"},
		Monitoring: true,
	}, "abc12345", "chat-agent")
	require.NoError(t, err)

	names := c.Names()
	assert.Equal(t, []string{NameMonitoring, NameDocker, NameRedis, NameCustomPackages}, names)
}

func TestFromSpec_NativeRuntime(t *testing.T) {
	c, err := FromSpec(Spec{Runtime: "native"}, "abc12345", "api")
	require.NoError(t, err)
	assert.Empty(t, c.Names())
}

func TestFromSpec_EmptyRuntime(t *testing.T) {
	c, err := FromSpec(Spec{}, "abc12345", "api")
	require.NoError(t, err)
	assert.Empty(t, c.Names())
}

func TestFromSpec_UnknownRuntime(t *testing.T) {
	_, err := FromSpec(Spec{Runtime: "podman"}, "abc12345", "api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "podman")
}

func TestFromSpec_ConflictingFeatures(t *testing.T) {
	_, err := FromSpec(Spec{
		Runtime:  "docker",
		Features: []string{NameGPUNvidia, NameGPUAMD},
	}, "abc12345", "api")

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestFromSpec_UnknownFeature(t *testing.T) {
	_, err := FromSpec(Spec{Features: []string{"nope"}}, "abc12345", "api")

	var unknown *UnknownCapabilityError
	require.ErrorAs(t, err, &unknown)
}
