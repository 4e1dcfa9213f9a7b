package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Health Spec
// =============================================================================

// DefaultHealthTimeout bounds a single HTTP health probe.
const DefaultHealthTimeout = 3 * time.Second

// HealthSpec declares the HTTP probe distinguishing "provider reports
// running" from "application is actually serving traffic".
type HealthSpec struct {
	Path           string `json:"path" yaml:"path"`
	Port           int    `json:"port" yaml:"port"`
	SuccessCodes   []int  `json:"success_codes,omitempty" yaml:"success_codes"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds"`
}

// URL returns the probe URL for a hostname.
func (h HealthSpec) URL(hostname string) string {
	path := h.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("http://%s:%d%s", hostname, h.Port, path)
}

// Accepts reports whether a response code counts as healthy. The default
// acceptable set is [200].
func (h HealthSpec) Accepts(code int) bool {
	codes := h.SuccessCodes
	if len(codes) == 0 {
		codes = []int{200}
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// Timeout returns the probe timeout, defaulting to DefaultHealthTimeout.
func (h HealthSpec) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return DefaultHealthTimeout
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// =============================================================================
// Deployment
// =============================================================================

// TemplateRef identifies the template a deployment was created from.
type TemplateRef struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Deployment is one running instance of a template-defined service. Identity
// is immutable once created; the record is never mutated in place - it is
// rebuilt from the resource's current tags and supplementary cache on every
// read.
type Deployment struct {
	ID           string      `json:"deployment_id"`
	AppName      string      `json:"app_name"`
	EnvName      string      `json:"env"`
	Template     TemplateRef `json:"template"`
	Region       string      `json:"region"`
	InstanceType string      `json:"instance_type"`
	InstanceID   int         `json:"instance_id"`
	Label        string      `json:"label"`
	IPv4         []string    `json:"ipv4"`
	Hostname     string      `json:"hostname"`
	Health       *HealthSpec `json:"health,omitempty"`
	ExternalPort int         `json:"external_port,omitempty"`
	InternalPort int         `json:"internal_port,omitempty"`
	SourceDir    string      `json:"created_from,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	LastStatus   Status      `json:"last_status"`
}

// URL returns the service URL for display.
func (d Deployment) URL() string {
	if d.ExternalPort == 0 || d.ExternalPort == 80 {
		return "http://" + d.Hostname
	}
	return fmt.Sprintf("http://%s:%d", d.Hostname, d.ExternalPort)
}

// ProbePort returns the port the health probe targets: the health spec's
// own port when set, then the deployment's external port, then 80.
func (d Deployment) ProbePort() int {
	if d.Health != nil && d.Health.Port != 0 {
		return d.Health.Port
	}
	if d.ExternalPort != 0 {
		return d.ExternalPort
	}
	return 80
}

// NewDeploymentID generates an opaque 8-character deployment id over
// [a-z0-9], small enough to fit a tag alongside its prefix.
func NewDeploymentID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// DeriveHostname derives the provider's default reverse-DNS hostname from an
// IPv4 address.
//
// Example:
//
//	DeriveHostname("203.0.113.10") // returns "203-0-113-10.ip.linodeusercontent.com"
func DeriveHostname(ipv4 string) string {
	return strings.ReplaceAll(ipv4, ".", "-") + ".ip.linodeusercontent.com"
}
