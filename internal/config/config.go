package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/danieljhkim/layerctl/internal/fsops"
	"github.com/danieljhkim/layerctl/internal/logging"
)

const (
	// BackendPhotoshop drives a running Photoshop over COM automation.
	BackendPhotoshop = "photoshop"
	// BackendFile operates on a YAML document snapshot.
	BackendFile = "file"

	// DefaultProgID is the COM class Photoshop registers.
	DefaultProgID = "Photoshop.Application"

	envPrefix = "LAYERCTL"
)

// ErrInvalidConfig is returned for settings that fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the application configuration.
type Config struct {
	Host HostConfig `json:"host" toml:"host" mapstructure:"host"`
	Log  LogConfig  `json:"log" toml:"log" mapstructure:"log"`
}

// HostConfig selects and configures the host backend.
type HostConfig struct {
	// Backend is "photoshop" or "file".
	Backend string `json:"backend" toml:"backend" mapstructure:"backend"`
	// ProgID is the COM class of the photoshop backend.
	ProgID string `json:"prog_id" toml:"prog_id" mapstructure:"prog_id"`
	// Document is the snapshot the file backend operates on.
	Document string `json:"document" toml:"document" mapstructure:"document"`
}

// LogConfig configures diagnostics written to stderr.
type LogConfig struct {
	Level string `json:"level" toml:"level" mapstructure:"level"`
}

// Default returns the built-in configuration. Photoshop is only reachable
// over COM on Windows, so other platforms default to the file backend.
func Default() *Config {
	backend := BackendFile
	if runtime.GOOS == "windows" {
		backend = BackendPhotoshop
	}
	return &Config{
		Host: HostConfig{
			Backend: backend,
			ProgID:  DefaultProgID,
		},
		Log: LogConfig{
			Level: logging.DefaultLevel,
		},
	}
}

// LoadOptions controls where Load reads settings from.
type LoadOptions struct {
	// ConfigFile is an explicit config file. It must exist.
	ConfigFile string
	// Paths locates the default config file, which may be absent.
	Paths *Paths
	// Overrides are applied last, keyed by dotted setting name.
	Overrides map[string]any
}

// Load resolves the configuration. It returns the config file that was
// read, or "" when only defaults and the environment applied.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("host.backend", defaults.Host.Backend)
	v.SetDefault("host.prog_id", defaults.Host.ProgID)
	v.SetDefault("host.document", defaults.Host.Document)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	path := opts.ConfigFile
	if path == "" && opts.Paths != nil {
		if _, err := os.Stat(opts.Paths.Config); err == nil {
			path = opts.Paths.Config
		}
	} else if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", path)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", path, err)
		}
		resolvedPath = path
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate checks setting values.
func (c *Config) Validate() error {
	c.Host.Backend = strings.ToLower(strings.TrimSpace(c.Host.Backend))
	switch c.Host.Backend {
	case BackendPhotoshop, BackendFile:
	default:
		return fmt.Errorf("%w: host.backend %q (want %s or %s)", ErrInvalidConfig, c.Host.Backend, BackendPhotoshop, BackendFile)
	}
	if c.Host.Backend == BackendPhotoshop && strings.TrimSpace(c.Host.ProgID) == "" {
		return fmt.Errorf("%w: host.prog_id must not be empty", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(fs fsops.FS, path string) error {
	exists, err := fs.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if exists {
		return fmt.Errorf("config file %s: %w", path, os.ErrExist)
	}

	data, err := Encode(Default())
	if err != nil {
		return err
	}
	if err := fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
