package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/buildvm/buildvm/internal/shell/registry"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Linode    LinodeConfig    `mapstructure:"linode"`
	Provision ProvisionConfig `mapstructure:"provision"`
	Poll      PollConfig      `mapstructure:"poll"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Log       LogConfig       `mapstructure:"log"`
}

// LinodeConfig holds cloud API credentials.
type LinodeConfig struct {
	// Token is the Linode API token. Set via BUILDVM_LINODE_TOKEN.
	Token string `mapstructure:"token"`
}

// ProvisionConfig holds instance creation defaults. Template values and
// command flags take precedence over these.
type ProvisionConfig struct {
	Region       string        `mapstructure:"region"`
	Type         string        `mapstructure:"type"`
	Image        string        `mapstructure:"image"`
	WaitTimeout  time.Duration `mapstructure:"wait_timeout"`
	WaitInterval time.Duration `mapstructure:"wait_interval"`
}

// PollConfig bounds concurrent status refreshes.
type PollConfig struct {
	Workers        int           `mapstructure:"workers"`
	CallsPerMinute int           `mapstructure:"calls_per_minute"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// RegistryConfig holds local deployment metadata configuration.
type RegistryConfig struct {
	// MetadataPath is the JSON metadata cache location. Empty means the
	// per-user default under the XDG config directory.
	MetadataPath string `mapstructure:"metadata_path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ResolveMetadataPath returns the configured metadata cache path or the default.
func (c RegistryConfig) ResolveMetadataPath() string {
	if c.MetadataPath != "" {
		return c.MetadataPath
	}
	return registry.DefaultMetadataPath()
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("linode.token", "")
	v.SetDefault("provision.region", "us-east")
	v.SetDefault("provision.type", "g6-standard-2")
	v.SetDefault("provision.image", "linode/ubuntu24.04")
	v.SetDefault("provision.wait_timeout", "10m")
	v.SetDefault("provision.wait_interval", "10s")
	v.SetDefault("poll.workers", 3)
	v.SetDefault("poll.calls_per_minute", 10)
	v.SetDefault("poll.cache_ttl", "5s")
	v.SetDefault("registry.metadata_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("BUILDVM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
