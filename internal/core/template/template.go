// Package template models the declarative deploy.yml document a project
// ships to describe its service: container, capabilities, provider defaults,
// and environment requirements. Parsing and validation are pure; reading the
// file is left to callers.
package template

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/buildvm/buildvm/internal/core/capability"
	"github.com/buildvm/buildvm/internal/core/domain"
)

// Filename is the template file looked up inside a project directory.
const Filename = "deploy.yml"

// Default container ports when the template leaves them unset.
const (
	DefaultInternalPort = 8000
	DefaultExternalPort = 80
)

// Template is a parsed deploy.yml.
type Template struct {
	Name         string          `yaml:"name"`
	DisplayName  string          `yaml:"display_name"`
	Version      string          `yaml:"version"`
	Description  string          `yaml:"description"`
	Capabilities capability.Spec `yaml:"capabilities"`
	Deploy       DeploySpec      `yaml:"deploy"`
	Setup        SetupSpec       `yaml:"setup"`
	Env          EnvSpec         `yaml:"env"`
}

// DeploySpec holds provider-specific deployment settings.
type DeploySpec struct {
	Linode LinodeSpec `yaml:"linode"`
}

// LinodeSpec holds instance defaults and the container definition.
type LinodeSpec struct {
	RegionDefault string        `yaml:"region_default"`
	TypeDefault   string        `yaml:"type_default"`
	Image         string        `yaml:"image"`
	Container     ContainerSpec `yaml:"container"`
}

// ContainerSpec describes the single container the instance runs.
type ContainerSpec struct {
	Image           string             `yaml:"image"`
	InternalPort    int                `yaml:"internal_port"`
	ExternalPort    int                `yaml:"external_port"`
	Env             map[string]string  `yaml:"env"`
	Command         string             `yaml:"command"`
	Volumes         []string           `yaml:"volumes"`
	PostStartScript string             `yaml:"post_start_script"`
	Health          *domain.HealthSpec `yaml:"health"`
}

// SetupSpec holds an optional custom setup script and extra files.
type SetupSpec struct {
	Script string            `yaml:"script"`
	Files  []capability.File `yaml:"files"`
}

// EnvSpec declares required environment variables.
type EnvSpec struct {
	Required []EnvRequirement `yaml:"required"`
}

// EnvRequirement names one required environment variable.
type EnvRequirement struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Parse parses deploy.yml content.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Filename, err)
	}
	if t.Name == "" {
		t.Name = "unknown"
	}
	if t.DisplayName == "" {
		t.DisplayName = t.Name
	}
	if t.Version == "" {
		t.Version = "0.0.0"
	}
	if t.Deploy.Linode.Container.InternalPort == 0 {
		t.Deploy.Linode.Container.InternalPort = DefaultInternalPort
	}
	if t.Deploy.Linode.Container.ExternalPort == 0 {
		t.Deploy.Linode.Container.ExternalPort = DefaultExternalPort
	}
	return &t, nil
}

// Load reads and parses the deploy.yml inside a project directory.
func Load(dir string) (*Template, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", Filename, dir)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}
