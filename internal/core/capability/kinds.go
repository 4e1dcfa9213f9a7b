package capability

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Capability Names
// =============================================================================

const (
	NameDocker         = "docker"
	NameDockerOptimize = "docker-optimize"
	NameGPUNvidia      = "gpu-nvidia"
	NameGPUAMD         = "gpu-amd"
	NameRedis          = "redis"
	NameMonitoring     = "monitoring"
	NameCustomPackages = "custom-packages"
)

// builtins maps capability names to their factories. Monitoring and
// custom-packages are parameterized and constructed directly instead.
var builtins = map[string]func() Capability{
	NameDocker:         func() Capability { return Docker(false) },
	NameDockerOptimize: func() Capability { return Docker(true) },
	NameGPUNvidia:      GPUNvidia,
	NameGPUAMD:         GPUAMD,
	"python-3.10":      func() Capability { return Python("3.10") },
	"python-3.11":      func() Capability { return Python("3.11") },
	"python-3.12":      func() Capability { return Python("3.12") },
	"nodejs-18":        func() Capability { return NodeJS("18") },
	"nodejs-20":        func() Capability { return NodeJS("20") },
	NameRedis:          Redis,
	"postgresql-14":    func() Capability { return PostgreSQL("14") },
	"postgresql-15":    func() Capability { return PostgreSQL("15") },
}

// =============================================================================
// Container Runtime
// =============================================================================

// Docker provides the Docker runtime via the official convenience script.
// When optimize is set, the daemon is configured for parallel image pulls.
func Docker(optimize bool) Capability {
	name := NameDocker
	if optimize {
		name = NameDockerOptimize
	}
	return Capability{
		name: name,
		fragments: func() FragmentSet {
			f := FragmentSet{
				RunCmds: []string{
					"curl -fsSL https://get.docker.com -o get-docker.sh",
					"sh get-docker.sh",
					"rm get-docker.sh",
					"systemctl enable docker",
					"systemctl start docker",
				},
			}
			if optimize {
				f.Files = append(f.Files, File{
					Path:        "/etc/docker/daemon.json",
					Permissions: "0644",
					Owner:       "root:root",
					Content:     "{\"max-concurrent-downloads\": 10}\n",
				})
				f.RunCmds = append(f.RunCmds, "systemctl restart docker")
			}
			return f
		},
	}
}

// =============================================================================
// GPU Support
// =============================================================================

// GPUNvidia provides NVIDIA drivers and the container toolkit. The nouveau
// driver is blacklisted at boot, before the driver install runs.
func GPUNvidia() Capability {
	return Capability{
		name: NameGPUNvidia,
		fragments: func() FragmentSet {
			return FragmentSet{
				BootCmds: []string{
					"echo 'blacklist nouveau' > /etc/modprobe.d/blacklist-nouveau.conf",
					"echo 'options nouveau modeset=0' >> /etc/modprobe.d/blacklist-nouveau.conf",
					"update-initramfs -u || true",
				},
				RunCmds: []string{
					"ubuntu-drivers devices || true",
					"ubuntu-drivers autoinstall || true",
					"modprobe nvidia || true",
					"modprobe nvidia-uvm || true",
					"nvidia-smi || echo 'Warning: nvidia-smi not available yet'",
					"curl -fsSL https://nvidia.github.io/libnvidia-container/gpgkey | gpg --dearmor -o /usr/share/keyrings/nvidia-container-toolkit-keyring.gpg",
					"curl -s -L https://nvidia.github.io/libnvidia-container/stable/deb/nvidia-container-toolkit.list | sed 's#deb https://#deb [signed-by=/usr/share/keyrings/nvidia-container-toolkit-keyring.gpg] https://#g' | tee /etc/apt/sources.list.d/nvidia-container-toolkit.list",
					"apt-get update -qq",
					"apt-get install -y nvidia-container-toolkit",
					"nvidia-ctk runtime configure --runtime=docker",
					"systemctl restart docker || true",
				},
			}
		},
	}
}

// GPUAMD provides AMD ROCm drivers and Docker device access.
func GPUAMD() Capability {
	return Capability{
		name: NameGPUAMD,
		fragments: func() FragmentSet {
			return FragmentSet{
				RunCmds: []string{
					"curl -fsSL https://repo.radeon.com/rocm/rocm.gpg.key | gpg --dearmor -o /usr/share/keyrings/rocm-keyring.gpg",
					"apt-get update -qq",
					"apt-get install -y amdgpu-dkms rocm-smi-lib || true",
					"modprobe amdgpu || true",
					"rocm-smi || echo 'Warning: rocm-smi not available yet'",
					"systemctl restart docker || true",
				},
			}
		},
	}
}

// =============================================================================
// Language Runtimes
// =============================================================================

// Python provides a Python runtime from the deadsnakes PPA.
func Python(version string) Capability {
	return Capability{
		name: "python-" + version,
		fragments: func() FragmentSet {
			pkg := "python" + version
			return FragmentSet{
				Packages: []string{
					pkg,
					pkg + "-venv",
					pkg + "-dev",
					"python3-pip",
				},
				RunCmds: []string{
					"add-apt-repository -y ppa:deadsnakes/ppa || true",
					"apt-get update -qq || true",
				},
			}
		},
	}
}

// NodeJS provides a Node.js runtime from NodeSource.
func NodeJS(version string) Capability {
	return Capability{
		name: "nodejs-" + version,
		fragments: func() FragmentSet {
			return FragmentSet{
				RunCmds: []string{
					fmt.Sprintf("curl -fsSL https://deb.nodesource.com/setup_%s.x | bash -", version),
					"apt-get install -y nodejs",
				},
			}
		},
	}
}

// =============================================================================
// Databases
// =============================================================================

// Redis provides a Redis server.
func Redis() Capability {
	return Capability{
		name: NameRedis,
		fragments: func() FragmentSet {
			return FragmentSet{
				Packages: []string{"redis-server"},
				RunCmds: []string{
					"systemctl enable redis-server",
					"systemctl start redis-server",
				},
			}
		},
	}
}

// PostgreSQL provides a PostgreSQL server.
func PostgreSQL(version string) Capability {
	return Capability{
		name: "postgresql-" + version,
		fragments: func() FragmentSet {
			return FragmentSet{
				Packages: []string{
					"postgresql-" + version,
					"postgresql-client-" + version,
				},
				RunCmds: []string{
					"systemctl enable postgresql",
					"systemctl start postgresql",
				},
			}
		},
	}
}

// =============================================================================
// Monitoring
// =============================================================================

// monitoringUnit is the systemd unit for the in-VM monitoring daemon. The
// daemon itself is installed at /usr/local/bin/build-watcher and exposes its
// read-only HTTP API on port 9090.
const monitoringUnit = `[Unit]
Description=buildvm container monitoring
After=docker.service
Wants=docker.service

[Service]
ExecStart=/usr/local/bin/build-watcher
EnvironmentFile=/etc/build-watcher.env
Restart=always
RestartSec=5

[Install]
WantedBy=multi-user.target
`

// Monitoring installs the in-VM monitoring daemon configuration and enables
// its service. It runs before anything it needs to observe, so the composer
// always places it first.
func Monitoring(deploymentID, appName string) Capability {
	return Capability{
		name: NameMonitoring,
		fragments: func() FragmentSet {
			env := fmt.Sprintf("DEPLOYMENT_ID=%s\nAPP_NAME=%s\nHTTP_PORT=9090\n", deploymentID, appName)
			return FragmentSet{
				Files: []File{
					{
						Path:        "/etc/build-watcher.env",
						Permissions: "0644",
						Owner:       "root:root",
						Content:     env,
					},
					{
						Path:        "/etc/systemd/system/build-watcher.service",
						Permissions: "0644",
						Owner:       "root:root",
						Content:     monitoringUnit,
					},
				},
				RunCmds: []string{
					"systemctl daemon-reload",
					"systemctl enable build-watcher",
					"systemctl start build-watcher || true",
				},
			}
		},
	}
}

// =============================================================================
// Custom Packages
// =============================================================================

// CustomPackages installs a caller-supplied list of system packages.
func CustomPackages(packages []string) Capability {
	pkgs := make([]string, len(packages))
	copy(pkgs, packages)
	return Capability{
		name: NameCustomPackages,
		fragments: func() FragmentSet {
			return FragmentSet{Packages: pkgs}
		},
	}
}

// KnownNames returns the sorted list of registered capability names, useful
// for error messages.
func KnownNames() string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
