package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/buildvm/buildvm/internal/core/domain"
)

// =============================================================================
// Supplementary Metadata Cache
// =============================================================================

// Metadata holds the per-deployment attributes tags cannot carry. The cache
// is best-effort and disposable: losing it costs only these cosmetic fields,
// because deployment identity lives in the resource tags.
type Metadata struct {
	DeploymentID string             `json:"deployment_id"`
	AppName      string             `json:"app_name"`
	EnvName      string             `json:"env"`
	CreatedAt    time.Time          `json:"created_at"`
	CreatedFrom  string             `json:"created_from,omitempty"`
	Health       *domain.HealthSpec `json:"health_config,omitempty"`
	Hostname     string             `json:"hostname,omitempty"`
	ExternalPort int                `json:"external_port,omitempty"`
	InternalPort int                `json:"internal_port,omitempty"`
}

// MetadataStore persists the cache as a single JSON file keyed by instance
// id. Every mutation reads the whole file, applies the change, and rewrites
// it through a temp file + rename, which guards against torn files.
// Concurrent writers can still lose each other's updates; the cache being
// regenerable makes that acceptable.
type MetadataStore struct {
	path string
}

// NewMetadataStore creates a store backed by the given file path.
func NewMetadataStore(path string) *MetadataStore {
	return &MetadataStore{path: path}
}

// DefaultMetadataPath returns the conventional cache location under the
// user's config directory.
func DefaultMetadataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "buildvm", "deployment-metadata.json")
}

// Save records metadata for an instance.
func (s *MetadataStore) Save(instanceID int, meta Metadata) error {
	all := s.load()
	all[strconv.Itoa(instanceID)] = meta
	return s.write(all)
}

// Get returns the cached metadata for an instance, if any.
func (s *MetadataStore) Get(instanceID int) (Metadata, bool) {
	meta, ok := s.load()[strconv.Itoa(instanceID)]
	return meta, ok
}

// Delete removes the entry for an instance. Deleting a missing entry is not
// an error.
func (s *MetadataStore) Delete(instanceID int) error {
	all := s.load()
	key := strconv.Itoa(instanceID)
	if _, ok := all[key]; !ok {
		return nil
	}
	delete(all, key)
	return s.write(all)
}

// CleanupStale removes entries whose instance id is not in the live set and
// returns how many were dropped.
func (s *MetadataStore) CleanupStale(live map[int]bool) (int, error) {
	all := s.load()
	removed := 0
	for key := range all {
		id, err := strconv.Atoi(key)
		if err != nil || !live[id] {
			delete(all, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.write(all)
}

// load reads the cache, treating a missing or corrupt file as empty: the
// cloud resource set is ground truth and the cache can be regenerated.
func (s *MetadataStore) load() map[string]Metadata {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]Metadata{}
	}
	var all map[string]Metadata
	if err := json.Unmarshal(data, &all); err != nil || all == nil {
		return map[string]Metadata{}
	}
	return all
}

func (s *MetadataStore) write(all map[string]Metadata) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace metadata file: %w", err)
	}
	return nil
}
