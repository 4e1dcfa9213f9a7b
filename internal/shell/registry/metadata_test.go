package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildvm/buildvm/internal/core/domain"
)

func testStore(t *testing.T) *MetadataStore {
	t.Helper()
	return NewMetadataStore(filepath.Join(t.TempDir(), "deployment-metadata.json"))
}

// =============================================================================
// MetadataStore Tests
// =============================================================================

func TestMetadataStore_SaveAndGet(t *testing.T) {
	store := testStore(t)

	meta := Metadata{
		DeploymentID: "abc12345",
		AppName:      "chat-agent",
		EnvName:      "prod",
		CreatedAt:    time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Hostname:     "203-0-113-10.ip.linodeusercontent.com",
		Health:       &domain.HealthSpec{Path: "/health", Port: 80},
		ExternalPort: 80,
	}
	require.NoError(t, store.Save(12345, meta))

	got, ok := store.Get(12345)
	require.True(t, ok)
	assert.Equal(t, meta, got)
}

func TestMetadataStore_GetMissing(t *testing.T) {
	store := testStore(t)
	_, ok := store.Get(999)
	assert.False(t, ok)
}

func TestMetadataStore_Delete(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Save(1, Metadata{DeploymentID: "a"}))
	require.NoError(t, store.Delete(1))

	_, ok := store.Get(1)
	assert.False(t, ok)
}

func TestMetadataStore_DeleteMissingIsNoop(t *testing.T) {
	store := testStore(t)
	assert.NoError(t, store.Delete(404))
}

func TestMetadataStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment-metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewMetadataStore(path)
	_, ok := store.Get(1)
	assert.False(t, ok)

	// Writes still work after corruption.
	require.NoError(t, store.Save(1, Metadata{DeploymentID: "a"}))
	_, ok = store.Get(1)
	assert.True(t, ok)
}

func TestMetadataStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deployment-metadata.json")
	store := NewMetadataStore(path)
	require.NoError(t, store.Save(1, Metadata{DeploymentID: "a"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "deployment-metadata.json", entries[0].Name())
}

func TestMetadataStore_CleanupStale(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Save(1, Metadata{DeploymentID: "a"}))
	require.NoError(t, store.Save(2, Metadata{DeploymentID: "b"}))
	require.NoError(t, store.Save(3, Metadata{DeploymentID: "c"}))

	removed, err := store.CleanupStale(map[int]bool{2: true})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := store.Get(2)
	assert.True(t, ok)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestMetadataStore_CleanupStaleNothingToDo(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Save(1, Metadata{DeploymentID: "a"}))

	removed, err := store.CleanupStale(map[int]bool{1: true})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
