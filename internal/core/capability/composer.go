package capability

import "fmt"

// =============================================================================
// Errors
// =============================================================================

// UnknownCapabilityError is returned when a capability name has no factory.
type UnknownCapabilityError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability: %s (known: %s)", e.Name, KnownNames())
}

// ConflictError is returned when two requested capabilities are incompatible.
// It names both sides of the conflict.
type ConflictError struct {
	Adding   string
	Existing string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("capability %s conflicts with %s", e.Adding, e.Existing)
}

// =============================================================================
// Composer
// =============================================================================

// Composer accumulates capabilities in order and concatenates their fragments.
// The monitoring capability is always kept at position 0 so its setup runs
// before anything it needs to observe; all other capabilities keep insertion
// order.
type Composer struct {
	caps []Capability
}

// NewComposer creates an empty composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Add appends a capability by name. It returns UnknownCapabilityError when
// the name has no factory, and ConflictError when the new capability is
// incompatible with one already added. The conflict check is symmetric: a
// one-sided declaration rejects both insertion orders.
func (c *Composer) Add(name string) error {
	factory, ok := builtins[name]
	if !ok {
		return &UnknownCapabilityError{Name: name}
	}
	return c.add(factory())
}

// AddMonitoring inserts the monitoring capability at position 0.
func (c *Composer) AddMonitoring(deploymentID, appName string) error {
	return c.add(Monitoring(deploymentID, appName))
}

// AddCustomPackages appends a custom-packages capability. Callers add it
// after all other capabilities so the package list installs last.
func (c *Composer) AddCustomPackages(packages []string) error {
	return c.add(CustomPackages(packages))
}

func (c *Composer) add(newCap Capability) error {
	for _, existing := range c.caps {
		if containsName(conflictsWith(newCap.Name()), existing.Name()) ||
			containsName(conflictsWith(existing.Name()), newCap.Name()) {
			return &ConflictError{Adding: newCap.Name(), Existing: existing.Name()}
		}
	}
	if newCap.Name() == NameMonitoring {
		c.caps = append([]Capability{newCap}, c.caps...)
	} else {
		c.caps = append(c.caps, newCap)
	}
	return nil
}

// Compose concatenates every capability's fragments in final order, without
// deduplication. For a fixed ordered capability list the result is
// deterministic.
func (c *Composer) Compose() FragmentSet {
	var combined FragmentSet
	for _, item := range c.caps {
		combined.append(item.Fragments())
	}
	return combined
}

// Names returns the capability names in final composition order.
func (c *Composer) Names() []string {
	names := make([]string, len(c.caps))
	for i, item := range c.caps {
		names[i] = item.Name()
	}
	return names
}

// RequiresGPU reports whether any composed capability needs GPU attachment.
func (c *Composer) RequiresGPU() bool {
	for _, item := range c.caps {
		if IsGPU(item.Name()) {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// =============================================================================
// Template Assembly
// =============================================================================

// Spec is the capabilities section of a deployment template.
type Spec struct {
	Runtime    string   `yaml:"runtime"`
	Features   []string `yaml:"features"`
	Packages   []string `yaml:"packages"`
	Monitoring bool     `yaml:"monitoring"`
}

// FromSpec builds a composer from a template capabilities section: runtime
// capability first, then the monitoring daemon when requested, then declared
// features, then custom packages last. The monitoring capability ends up at
// position 0 regardless of this declaration order.
func FromSpec(spec Spec, deploymentID, appName string) (*Composer, error) {
	c := NewComposer()

	switch spec.Runtime {
	case "docker":
		if err := c.Add(NameDocker); err != nil {
			return nil, err
		}
	case "docker-optimize":
		if err := c.Add(NameDockerOptimize); err != nil {
			return nil, err
		}
	case "", "native":
		// Native runtime needs no special setup.
	default:
		return nil, fmt.Errorf("unknown runtime: %s", spec.Runtime)
	}

	if spec.Monitoring {
		if err := c.AddMonitoring(deploymentID, appName); err != nil {
			return nil, err
		}
	}

	for _, feature := range spec.Features {
		if err := c.Add(feature); err != nil {
			return nil, err
		}
	}

	if len(spec.Packages) > 0 {
		if err := c.AddCustomPackages(spec.Packages); err != nil {
			return nil, err
		}
	}

	return c, nil
}
