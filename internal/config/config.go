package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete warden configuration.
type Config struct {
	Paths      PathsConfig      `mapstructure:"paths"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Validator  ValidatorConfig  `mapstructure:"validator"`
	Statusline StatuslineConfig `mapstructure:"statusline"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PathsConfig anchors the on-disk layout.
type PathsConfig struct {
	// BaseDir is the root for workflow data (default: ~/.claude).
	BaseDir string `mapstructure:"base_dir"`
	// ScratchDir holds session markers, bindings, and counters
	// (default: the OS temp directory).
	ScratchDir string `mapstructure:"scratch_dir"`
}

// WorkflowsDir is where workflow state and documents live.
func (p *PathsConfig) WorkflowsDir() string {
	return filepath.Join(p.BaseDir, "workflows")
}

// ThresholdsConfig sets the safety-valve ceilings for the enforcement
// hooks.
type ThresholdsConfig struct {
	// StopBlockLimit is how many consecutive stops may be blocked
	// before one is allowed through.
	StopBlockLimit int `mapstructure:"stop_block_limit"`
	// StaleLimit is how many block attempts may observe an unchanged
	// workflow before the stop is allowed.
	StaleLimit int `mapstructure:"stale_limit"`
	// DenyLimit is how many times one (mode, model) pair is denied
	// before the override admits it.
	DenyLimit int `mapstructure:"deny_limit"`
	// CompletionLimit is how many times one task's completion may be
	// blocked.
	CompletionLimit int `mapstructure:"completion_limit"`
}

// ValidatorConfig controls post-edit syntax checking.
type ValidatorConfig struct {
	// TimeoutSeconds bounds one external checker run.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the checker timeout as a duration.
func (v *ValidatorConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

// StatuslineConfig controls the status line renderer.
type StatuslineConfig struct {
	// CacheTTLSeconds is how long fetched usage data stays fresh.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// CacheTTL returns the cache TTL as a duration.
func (s *StatuslineConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// CleanupConfig controls age-based scratch file collection.
type CleanupConfig struct {
	// MaxAgeHours is how old a session artifact must be before the
	// cleanup command removes it.
	MaxAgeHours int `mapstructure:"max_age_hours"`
}

// MaxAge returns the cleanup horizon as a duration.
func (c *CleanupConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// LoggingConfig controls the hook activity log.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// File is the log path; empty disables logging.
	File string `mapstructure:"file"`
	// MaxSizeMB triggers rotation when the log grows past it.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated logs to keep.
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".claude")
	return &Config{
		Paths: PathsConfig{
			BaseDir:    base,
			ScratchDir: os.TempDir(),
		},
		Thresholds: ThresholdsConfig{
			StopBlockLimit:  5,
			StaleLimit:      3,
			DenyLimit:       3,
			CompletionLimit: 3,
		},
		Validator:  ValidatorConfig{TimeoutSeconds: 15},
		Statusline: StatuslineConfig{CacheTTLSeconds: 60},
		Cleanup:    CleanupConfig{MaxAgeHours: 24},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(base, "workflows", "warden.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("paths.base_dir", defaults.Paths.BaseDir)
	viper.SetDefault("paths.scratch_dir", defaults.Paths.ScratchDir)

	viper.SetDefault("thresholds.stop_block_limit", defaults.Thresholds.StopBlockLimit)
	viper.SetDefault("thresholds.stale_limit", defaults.Thresholds.StaleLimit)
	viper.SetDefault("thresholds.deny_limit", defaults.Thresholds.DenyLimit)
	viper.SetDefault("thresholds.completion_limit", defaults.Thresholds.CompletionLimit)

	viper.SetDefault("validator.timeout_seconds", defaults.Validator.TimeoutSeconds)
	viper.SetDefault("statusline.cache_ttl_seconds", defaults.Statusline.CacheTTLSeconds)
	viper.SetDefault("cleanup.max_age_hours", defaults.Cleanup.MaxAgeHours)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config and validates
// it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when
// loading fails. Hooks prefer a default config over refusing to run.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the user's warden config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "warden")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".warden"
	}
	return filepath.Join(home, ".config", "warden")
}

// ConfigFile returns the path to the config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
