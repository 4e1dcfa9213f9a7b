package cloudinit

import (
	"fmt"
	"strings"

	"github.com/buildvm/buildvm/internal/core/capability"
)

// renderStartScript renders the container start script. Capabilities handle
// all system setup (runtime, GPU, databases); this script only waits for
// readiness, then pulls and runs the container. The script runs under
// `set -eu`, so a failing post-start hook propagates its exit code.
func renderStartScript(cfg Config) string {
	gpu := RequiresGPU(cfg.Capabilities)

	lines := []string{
		"#!/bin/sh",
		"set -eu",
		"CONTAINER_NAME=" + ContainerName,
		fmt.Sprintf("IMAGE=%q", cfg.ContainerImage),
		fmt.Sprintf("EXTERNAL_PORT=%d", cfg.ExternalPort),
		fmt.Sprintf("INTERNAL_PORT=%d", cfg.InternalPort),
		"",
	}

	if gpu {
		lines = append(lines, gpuWaitBlock(gpuProbeCommand(cfg.Capabilities))...)
	}

	lines = append(lines,
		"# Wait for the container runtime to be ready",
		"i=0",
		fmt.Sprintf("while [ $i -lt %d ]; do", dockerReadyAttempts),
		"  if docker info >/dev/null 2>&1; then",
		"    break",
		"  fi",
		"  i=$((i + 1))",
		fmt.Sprintf("  sleep %d", dockerReadyInterval),
		"done",
		"if ! docker info >/dev/null 2>&1; then",
		"  echo \"Docker daemon unavailable\" >&2",
		"  exit 1",
		"fi",
		"",
		"docker pull \"$IMAGE\"",
		"docker rm -f \"$CONTAINER_NAME\" >/dev/null 2>&1 || true",
		"",
		"# Source env file for variable expansion in the run command",
		"set -a",
		". "+EnvFilePath,
		"set +a",
		"",
		"docker run -d \\",
		"  --name \"$CONTAINER_NAME\" \\",
		"  --restart unless-stopped \\",
		"  --env-file "+EnvFilePath+" \\",
		"  -p ${EXTERNAL_PORT}:${INTERNAL_PORT} \\",
	)

	for _, volume := range cfg.Volumes {
		lines = append(lines, fmt.Sprintf("  -v %s \\", volume))
	}
	if gpu {
		lines = append(lines, "  --gpus all \\")
	}

	if cfg.Command != "" {
		lines = append(lines, "  \"$IMAGE\" \\", "  "+cfg.Command)
	} else {
		lines = append(lines, "  \"$IMAGE\"")
	}

	if cfg.PostStartScript != "" {
		lines = append(lines,
			"",
			"# Template post-start hook",
			"cat <<'HOOK' >"+PostStartHookPath,
			strings.TrimRight(cfg.PostStartScript, "\n"),
			"HOOK",
			"chmod +x "+PostStartHookPath,
			"sh "+PostStartHookPath,
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// gpuProbeCommand picks the readiness probe for the composed GPU capability.
func gpuProbeCommand(capabilities []string) string {
	for _, name := range capabilities {
		if name == capability.NameGPUAMD {
			return "rocm-smi"
		}
	}
	return "nvidia-smi"
}

// gpuWaitBlock renders a bounded fixed-interval wait for GPU drivers. The
// boot fails fatally rather than silently starting without the GPU.
func gpuWaitBlock(probe string) []string {
	attempts := make([]string, gpuReadyAttempts)
	for i := range attempts {
		attempts[i] = fmt.Sprintf("%d", i+1)
	}
	total := gpuReadyAttempts * gpuReadyInterval

	return []string{
		"# Wait for GPU drivers to be ready",
		"echo \"Waiting for GPU drivers...\"",
		fmt.Sprintf("for i in %s; do", strings.Join(attempts, " ")),
		fmt.Sprintf("  if %s >/dev/null 2>&1; then", probe),
		"    echo \"GPU drivers ready\"",
		"    break",
		"  fi",
		fmt.Sprintf("  echo \"  Attempt $i/%d: waiting for drivers...\"", gpuReadyAttempts),
		fmt.Sprintf("  sleep %d", gpuReadyInterval),
		"done",
		"",
		fmt.Sprintf("if ! %s >/dev/null 2>&1; then", probe),
		fmt.Sprintf("  echo \"ERROR: GPU drivers not available after %d seconds\" >&2", total),
		"  echo \"This may require a system reboot to initialize the GPU\" >&2",
		"  exit 1",
		"fi",
		"",
	}
}
