package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// InterpreterConfig configures Python interpreter discovery.
type InterpreterConfig struct {
	// Candidates are command names tried in order on PATH.
	Candidates []string `mapstructure:"candidates"`

	// MinVersion is the minimum acceptable interpreter version.
	MinVersion string `mapstructure:"min_version"`
}

// ProjectConfig describes the launched application project.
type ProjectConfig struct {
	Manifest  string `mapstructure:"manifest"`
	Module    string `mapstructure:"module"`
	AppConfig string `mapstructure:"app_config"`
}

// TimeoutConfig bounds the external commands the launcher runs.
// The application launch itself is never bounded; the launcher blocks
// until the child exits.
type TimeoutConfig struct {
	Probe    string `mapstructure:"probe"`
	Install  string `mapstructure:"install"`
	Browsers string `mapstructure:"browsers"`
}

// CacheConfig configures the bootstrap state cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // Empty means use DefaultCachePath()
}

// Config represents the launcher configuration.
type Config struct {
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Project     ProjectConfig     `mapstructure:"project"`
	Browsers    []string          `mapstructure:"browsers"`
	Timeouts    TimeoutConfig     `mapstructure:"timeouts"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ProbeTimeout returns the parsed probe timeout, falling back to the default.
func (c *Config) ProbeTimeout() time.Duration {
	return parseDuration(c.Timeouts.Probe, DefaultProbeTimeout)
}

// InstallTimeout returns the parsed install timeout, falling back to the default.
func (c *Config) InstallTimeout() time.Duration {
	return parseDuration(c.Timeouts.Install, DefaultInstallTimeout)
}

// BrowserTimeout returns the parsed browser provisioning timeout.
func (c *Config) BrowserTimeout() time.Duration {
	return parseDuration(c.Timeouts.Browsers, DefaultBrowserTimeout)
}

func parseDuration(s, fallback string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/hpblaunch/config.yaml
//   - $HOME/.config/hpblaunch/config.yaml
//
// Environment variables are prefixed with HPBLAUNCH_
// (e.g., HPBLAUNCH_PROJECT_MODULE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "hpblaunch"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "hpblaunch"))

	v.SetEnvPrefix("HPBLAUNCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.Cache.Path, "~") {
		cfg.Cache.Path = filepath.Join(homeDir, cfg.Cache.Path[1:])
	}

	return &cfg, nil
}

// LoadFile loads configuration from an explicit file path, with
// environment variables still able to override.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("HPBLAUNCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting any
// config file or environment variable.
func Default() *Config {
	return &Config{
		Interpreter: InterpreterConfig{
			Candidates: append([]string(nil), DefaultCandidates...),
			MinVersion: DefaultMinPython,
		},
		Project: ProjectConfig{
			Manifest:  DefaultManifest,
			Module:    DefaultModule,
			AppConfig: DefaultAppConfig,
		},
		Browsers: append([]string(nil), DefaultBrowsers...),
		Timeouts: TimeoutConfig{
			Probe:    DefaultProbeTimeout,
			Install:  DefaultInstallTimeout,
			Browsers: DefaultBrowserTimeout,
		},
		Cache: CacheConfig{Enabled: true},
		Logging: LoggingConfig{
			Level: "info",
			Rotation: RotationConfig{
				MaxSize:    "10MB",
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
		},
	}
}

// SetDefaults registers every configuration default on the given viper
// instance. The root command shares this with Load so flag-bound viper
// state and file-loaded state agree.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("interpreter.candidates", DefaultCandidates)
	v.SetDefault("interpreter.min_version", DefaultMinPython)
	v.SetDefault("project.manifest", DefaultManifest)
	v.SetDefault("project.module", DefaultModule)
	v.SetDefault("project.app_config", DefaultAppConfig)
	v.SetDefault("browsers", DefaultBrowsers)
	v.SetDefault("timeouts.probe", DefaultProbeTimeout)
	v.SetDefault("timeouts.install", DefaultInstallTimeout)
	v.SetDefault("timeouts.browsers", DefaultBrowserTimeout)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use logging.DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"bootstrap": "info",
		"interp":    "info",
		"pip":       "info",
		"browsers":  "info",
		"state":     "warn",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "hpblaunch"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "hpblaunch"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// CacheDir returns $XDG_CACHE_HOME/hpblaunch/ for the bootstrap state store.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "hpblaunch")
}

// StateDir returns $XDG_STATE_HOME/hpblaunch/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "hpblaunch")
}

// DefaultCachePath returns the default bootstrap state store path.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "state")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "hpblaunch.log")
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# hpblaunch configuration

# Python interpreter discovery
interpreter:
  # Command names tried in order on PATH
  candidates:
    - python3
    - python
    - py
  # Interpreters older than this are rejected
  min_version: %q

# Launched application project layout (paths relative to the project root)
project:
  manifest: %s
  module: %s
  app_config: %s

# Playwright browsers provisioned before launch
browsers:
  - chromium

# External command timeouts (the application launch itself is unbounded)
timeouts:
  probe: %s
  install: %s
  browsers: %s

# Bootstrap state cache; lets repeat launches skip completed install steps
cache:
  enabled: true
  # Store path (empty means use default: $XDG_CACHE_HOME/hpblaunch/state)
  path: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/hpblaunch/hpblaunch.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    bootstrap: info
    interp: info
    pip: info
    browsers: info
    state: warn
`, DefaultMinPython, DefaultManifest, DefaultModule, DefaultAppConfig,
		DefaultProbeTimeout, DefaultInstallTimeout, DefaultBrowserTimeout)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
