package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"guildcore/internal/common/fsutil"
)

// Config holds runtime parameters for guildd.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Debug             bool     `json:"debug" yaml:"debug" toml:"debug" env:"GUILD_DEBUG"`
	LogLevel          string   `json:"log_level" yaml:"log_level" toml:"log_level" env:"GUILD_LOG_LEVEL"`
	LogPretty         bool     `json:"log_pretty" yaml:"log_pretty" toml:"log_pretty" env:"GUILD_LOG_PRETTY"`
	AdminAddr         string   `json:"admin_addr" yaml:"admin_addr" toml:"admin_addr" env:"GUILD_ADMIN_ADDR"`
	TickMS            int      `json:"tick_ms" yaml:"tick_ms" toml:"tick_ms" env:"GUILD_TICK_MS"`
	DebounceMS        int      `json:"debounce_ms" yaml:"debounce_ms" toml:"debounce_ms" env:"GUILD_DEBOUNCE_MS"`
	RegionShift       int      `json:"region_shift" yaml:"region_shift" toml:"region_shift" env:"GUILD_REGION_SHIFT"`
	ShutdownTimeoutMS int      `json:"shutdown_timeout_ms" yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" env:"GUILD_SHUTDOWN_TIMEOUT_MS"`
	CancelKeywords    []string `json:"cancel_keywords" yaml:"cancel_keywords" toml:"cancel_keywords" env:"GUILD_CANCEL_KEYWORDS" envSeparator:","`
	CORSOrigins       []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"GUILD_CORS_ORIGINS" envSeparator:","`
	MinHostVersion    string   `json:"min_host_version" yaml:"min_host_version" toml:"min_host_version" env:"GUILD_MIN_HOST_VERSION"`
}

// Defaults for unset fields.
const (
	DefaultAdminAddr         = "127.0.0.1:8089"
	DefaultLogLevel          = "info"
	DefaultTickMS            = 50
	DefaultDebounceMS        = 200
	DefaultRegionShift       = 3
	DefaultShutdownTimeoutMS = 5000
	DefaultMinHostVersion    = "1.20"
)

// SearchPaths are tried in order by Discover.
var SearchPaths = []string{
	"guildcore.yaml",
	"guildcore.toml",
	"~/.config/guildcore/config.yaml",
}

// Defaults returns a Config with every field at its default.
func Defaults() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.AdminAddr == "" {
		c.AdminAddr = DefaultAdminAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.TickMS <= 0 {
		c.TickMS = DefaultTickMS
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = DefaultDebounceMS
	}
	if c.RegionShift <= 0 {
		c.RegionShift = DefaultRegionShift
	}
	if c.ShutdownTimeoutMS <= 0 {
		c.ShutdownTimeoutMS = DefaultShutdownTimeoutMS
	}
	if len(c.CancelKeywords) == 0 {
		c.CancelKeywords = []string{"cancel"}
	}
	if c.MinHostVersion == "" {
		c.MinHostVersion = DefaultMinHostVersion
	}
}

// Validate rejects values ApplyDefaults would not fix.
func (c Config) Validate() error {
	if c.RegionShift > 16 {
		return fmt.Errorf("region_shift %d out of range [1,16]", c.RegionShift)
	}
	for _, k := range c.CancelKeywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("cancel_keywords: empty keyword")
		}
	}
	return nil
}

func (c Config) Tick() time.Duration     { return time.Duration(c.TickMS) * time.Millisecond }
func (c Config) Debounce() time.Duration { return time.Duration(c.DebounceMS) * time.Millisecond }
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml. A leading '~' is expanded.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv overlays GUILD_* environment variables onto cfg. Unset variables
// leave fields untouched.
func FromEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Discover returns the first existing entry of SearchPaths, or "".
func Discover() string {
	return fsutil.FirstExisting(SearchPaths...)
}

// Resolve builds the effective configuration: file (explicit path, else a
// discovered one, else none), then environment, then defaults.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = Discover()
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := FromEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
