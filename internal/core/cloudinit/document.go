// Package cloudinit builds the boot-time provisioning document handed to a
// newly created instance. Document generation is a pure function of its
// inputs: identical inputs yield byte-identical output, so a dry run renders
// exactly what a real deployment would send.
package cloudinit

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/buildvm/buildvm/internal/core/capability"
)

// Well-known paths written on the instance.
const (
	EnvFilePath         = "/etc/build.env"
	StartScriptPath     = "/usr/local/bin/start-container.sh"
	SetupScriptPath     = "/usr/local/bin/custom-setup.sh"
	PostStartHookPath   = "/usr/local/bin/post-start-hook.sh"
	ContainerName       = "app"
	documentMarker      = "#cloud-config"
	gpuReadyAttempts    = 10
	gpuReadyInterval    = 5
	dockerReadyAttempts = 30
	dockerReadyInterval = 2
)

// Config holds everything the document builder needs. Fragments and
// Capabilities come from a composed capability set.
type Config struct {
	ContainerImage    string
	InternalPort      int
	ExternalPort      int
	EnvVars           map[string]string
	Command           string
	PostStartScript   string
	CustomSetupScript string
	CustomFiles       []capability.File
	Volumes           []string
	Capabilities      []string
	Fragments         capability.FragmentSet
}

// Document is the complete boot configuration: files to write, ordered boot
// commands, and ordered run commands. The final run command is an argv list;
// all others are shell lines.
type Document struct {
	WriteFiles []capability.File
	BootCmds   []string
	RunCmds    []any
}

// Build assembles the provisioning document. Run command order: package
// install, capability commands, custom setup, final container start.
func Build(cfg Config) Document {
	writeFiles := []capability.File{
		{
			Path:        EnvFilePath,
			Permissions: "0600",
			Owner:       "root:root",
			Content:     renderEnvFile(cfg.EnvVars),
		},
		{
			Path:        StartScriptPath,
			Permissions: "0755",
			Owner:       "root:root",
			Content:     renderStartScript(cfg),
		},
	}
	writeFiles = append(writeFiles, cfg.Fragments.Files...)
	writeFiles = append(writeFiles, cfg.CustomFiles...)
	if cfg.CustomSetupScript != "" {
		writeFiles = append(writeFiles, capability.File{
			Path:        SetupScriptPath,
			Permissions: "0755",
			Owner:       "root:root",
			Content:     cfg.CustomSetupScript,
		})
	}

	var runCmds []any
	if len(cfg.Fragments.Packages) > 0 {
		runCmds = append(runCmds,
			"export DEBIAN_FRONTEND=noninteractive",
			"apt-get update -qq || true",
			fmt.Sprintf("apt-get install -y -qq %s || true", strings.Join(cfg.Fragments.Packages, " ")),
		)
	}
	for _, cmd := range cfg.Fragments.RunCmds {
		runCmds = append(runCmds, cmd)
	}
	if cfg.CustomSetupScript != "" {
		runCmds = append(runCmds, "/bin/sh "+SetupScriptPath)
	}
	runCmds = append(runCmds, []string{"/bin/sh", StartScriptPath})

	return Document{
		WriteFiles: writeFiles,
		BootCmds:   cfg.Fragments.BootCmds,
		RunCmds:    runCmds,
	}
}

// yamlDocument fixes the cloud-config field order. bootcmd is omitted when no
// capability contributed boot commands.
type yamlDocument struct {
	WriteFiles []capability.File `yaml:"write_files"`
	RunCmds    []any             `yaml:"runcmd"`
	BootCmds   []string          `yaml:"bootcmd,omitempty"`
}

// Encode renders the document as cloud-config text with the required leading
// marker line.
func (d Document) Encode() (string, error) {
	out, err := yaml.Marshal(yamlDocument{
		WriteFiles: d.WriteFiles,
		RunCmds:    d.RunCmds,
		BootCmds:   d.BootCmds,
	})
	if err != nil {
		return "", fmt.Errorf("encode cloud-config: %w", err)
	}
	return documentMarker + "\n" + string(out), nil
}

// renderEnvFile renders one KEY=VALUE line per entry, sorted by key so the
// output is deterministic. Non-empty output ends with a newline.
func renderEnvFile(envVars map[string]string) string {
	if len(envVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(envVars))
	for key := range envVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(envVars[key])
		b.WriteString("\n")
	}
	return b.String()
}

// RequiresGPU reports whether any composed capability name needs GPU device
// attachment.
func RequiresGPU(capabilities []string) bool {
	for _, name := range capabilities {
		if capability.IsGPU(name) {
			return true
		}
	}
	return false
}
