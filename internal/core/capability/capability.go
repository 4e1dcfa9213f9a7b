// Package capability resolves symbolic capability names into ordered
// cloud-init fragments. This is part of the Functional Core - all
// fragment generation is pure with no I/O.
package capability

// =============================================================================
// Fragment Types
// =============================================================================

// File describes a file written to the instance at boot.
type File struct {
	Path        string `yaml:"path"`
	Permissions string `yaml:"permissions"`
	Owner       string `yaml:"owner"`
	Content     string `yaml:"content"`
}

// FragmentSet holds the ordered cloud-init fragments contributed by one or
// more capabilities. Concatenation preserves order and is never deduplicated:
// package managers tolerate duplicate install requests, and capability
// commands depend on their declared order.
type FragmentSet struct {
	Packages []string
	BootCmds []string
	RunCmds  []string
	Files    []File
}

// append concatenates another fragment set onto this one, preserving order.
func (f *FragmentSet) append(other FragmentSet) {
	f.Packages = append(f.Packages, other.Packages...)
	f.BootCmds = append(f.BootCmds, other.BootCmds...)
	f.RunCmds = append(f.RunCmds, other.RunCmds...)
	f.Files = append(f.Files, other.Files...)
}

// =============================================================================
// Capability
// =============================================================================

// Capability is a named, declarative provisioning requirement that expands
// into concrete boot-time instructions. The set of kinds is closed: each is
// built by a constructor in kinds.go holding its own parameters and a pure
// fragment-generating function.
type Capability struct {
	name      string
	fragments func() FragmentSet
}

// Name returns the capability name.
func (c Capability) Name() string {
	return c.name
}

// Fragments returns the cloud-init fragments for this capability.
func (c Capability) Fragments() FragmentSet {
	return c.fragments()
}

// =============================================================================
// Conflict Table
// =============================================================================

// conflictTable declares pairwise-incompatible capabilities. Entries are
// symmetric; Composer.Add additionally checks both directions so a one-sided
// declaration still rejects both insertion orders.
var conflictTable = map[string][]string{
	NameGPUNvidia: {NameGPUAMD},
	NameGPUAMD:    {NameGPUNvidia},
}

// conflictsWith returns the names a capability declares as incompatible.
func conflictsWith(name string) []string {
	return conflictTable[name]
}

// IsGPU reports whether a capability name requires GPU device attachment.
func IsGPU(name string) bool {
	return name == NameGPUNvidia || name == NameGPUAMD
}
