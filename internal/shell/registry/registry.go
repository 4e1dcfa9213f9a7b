// Package registry reconstructs deployment records from live cloud
// resources. Tags are the authoritative, durable source of deployment
// identity; a local metadata cache supplies the fields tags cannot hold and
// may be regenerated from nothing at any time.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/buildvm/buildvm/internal/core/domain"
	"github.com/buildvm/buildvm/internal/core/template"
	"github.com/buildvm/buildvm/internal/shell/cloud"
)

// NotFoundError is returned when an explicit lookup finds nothing.
type NotFoundError struct {
	Key string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("deployment not found: %s", e.Key)
}

// Filter narrows a listing by parsed tag values.
type Filter struct {
	App string
	Env string
}

// Registry lists and resolves deployments by scanning live instances.
type Registry struct {
	api    cloud.InstanceAPI
	meta   *MetadataStore
	logger *slog.Logger
}

// New creates a registry over the given API client and metadata cache.
func New(api cloud.InstanceAPI, meta *MetadataStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		api:    api,
		meta:   meta,
		logger: logger.With("component", "registry"),
	}
}

// List enumerates all managed deployments. Instances with no deployment-id
// tag are not managed deployments and are skipped. Cache merge failures only
// cost supplementary fields, never the listing.
func (r *Registry) List(ctx context.Context, filter Filter) ([]domain.Deployment, error) {
	instances, err := r.api.ListInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}

	var deployments []domain.Deployment
	for i := range instances {
		dep, ok := r.fromInstance(&instances[i])
		if !ok {
			continue
		}
		if filter.App != "" && dep.AppName != filter.App {
			continue
		}
		if filter.Env != "" && dep.EnvName != filter.Env {
			continue
		}
		deployments = append(deployments, dep)
	}
	return deployments, nil
}

// Get resolves a deployment by id. A shortened id matches by prefix.
func (r *Registry) Get(ctx context.Context, id string) (*domain.Deployment, error) {
	deployments, err := r.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	for i := range deployments {
		if deployments[i].ID == id || strings.HasPrefix(deployments[i].ID, id) {
			return &deployments[i], nil
		}
	}
	return nil, &NotFoundError{Key: id}
}

// GetByInstanceID resolves a deployment by the underlying resource id.
func (r *Registry) GetByInstanceID(ctx context.Context, instanceID int) (*domain.Deployment, error) {
	deployments, err := r.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	for i := range deployments {
		if deployments[i].InstanceID == instanceID {
			return &deployments[i], nil
		}
	}
	return nil, &NotFoundError{Key: fmt.Sprintf("instance %d", instanceID)}
}

// FindForDirectory locates the deployment created from a project directory.
// The recorded source directory wins; when nothing matches, the directory's
// deploy.yml app name is used as a fallback filter. With several matches the
// most recently created deployment is returned.
func (r *Registry) FindForDirectory(ctx context.Context, dir string) (*domain.Deployment, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	deployments, err := r.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	var matches []domain.Deployment
	for _, dep := range deployments {
		if dep.SourceDir == abs {
			matches = append(matches, dep)
		}
	}

	if len(matches) == 0 {
		tmpl, err := template.Load(abs)
		if err == nil && tmpl.Name != "" {
			for _, dep := range deployments {
				if dep.AppName == tmpl.Name {
					matches = append(matches, dep)
				}
			}
		}
	}

	if len(matches) == 0 {
		return nil, &NotFoundError{Key: abs}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return &matches[0], nil
}

// CleanupStaleMetadata drops cache entries whose instance no longer exists
// and returns how many were removed.
func (r *Registry) CleanupStaleMetadata(ctx context.Context) (int, error) {
	instances, err := r.api.ListInstances(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup metadata: %w", err)
	}
	live := make(map[int]bool, len(instances))
	for _, inst := range instances {
		live[inst.ID] = true
	}
	removed, err := r.meta.CleanupStale(live)
	if err != nil {
		return 0, fmt.Errorf("cleanup metadata: %w", err)
	}
	if removed > 0 {
		r.logger.Info("removed stale metadata entries", "count", removed)
	}
	return removed, nil
}

// fromInstance rebuilds a deployment record from an instance's tags plus the
// supplementary cache. Returns false for instances lacking the deployment-id
// tag.
func (r *Registry) fromInstance(inst *cloud.Instance) (domain.Deployment, bool) {
	tags := domain.ParseTags(inst.Tags)
	id := tags["id"]
	if id == "" {
		return domain.Deployment{}, false
	}

	dep := domain.Deployment{
		ID:           id,
		AppName:      valueOr(tags["app"], "unknown"),
		EnvName:      valueOr(tags["env"], "default"),
		Template:     domain.TemplateRef{Name: valueOr(tags["tmpl"], "unknown"), Version: tags["ver"]},
		Region:       inst.Region,
		InstanceType: inst.Type,
		InstanceID:   inst.ID,
		Label:        inst.Label,
		IPv4:         inst.IPv4,
		CreatedAt:    inst.Created,
		LastStatus:   domain.MapInstanceStatus(inst.Status),
	}

	if meta, ok := r.meta.Get(inst.ID); ok {
		dep.Hostname = meta.Hostname
		dep.Health = meta.Health
		dep.ExternalPort = meta.ExternalPort
		dep.InternalPort = meta.InternalPort
		dep.SourceDir = meta.CreatedFrom
	}
	if dep.Hostname == "" && len(dep.IPv4) > 0 {
		dep.Hostname = domain.DeriveHostname(dep.IPv4[0])
	}
	return dep, true
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
