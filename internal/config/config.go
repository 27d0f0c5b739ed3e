// Package config handles CLI flags, optional TOML configuration and validation.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	toml "github.com/pelletier/go-toml/v2"
)

const appDirName = "webview-bridge"

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config     string           `kong:"short='c',help='Path to TOML config file.',env='WEBVIEW_BRIDGE_CONFIG'"`
	LogLevel   string           `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
	LogFormat  string           `kong:"help='Log format: json|text (overrides config).',env='LOG_FORMAT'"`
	Bridge     bool             `kong:"help='Serve the HTTP forwarder on a loopback endpoint.'"`
	BridgePort int              `kong:"help='Bridge server port (overrides config).'"`
	Version    kong.VersionFlag `kong:"help='Print version and exit.'"`
}

// Config is the top-level application configuration.
type Config struct {
	Window    WindowConfig    `toml:"window"`
	Forwarder ForwarderConfig `toml:"forwarder"`
	Bridge    BridgeConfig    `toml:"bridge"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`

	filePath string
}

// WindowConfig bounds the startup window geometry. Zero values mean "use default".
type WindowConfig struct {
	MinWidth         float64 `toml:"min_width"`
	MaxWidthFraction float64 `toml:"max_width_fraction"`
	AspectRatio      float64 `toml:"aspect_ratio"`
}

// ForwarderConfig holds settings for the outbound HTTP forwarder.
type ForwarderConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"` // 0 disables the client timeout
}

// BridgeConfig holds settings for the loopback bridge server.
type BridgeConfig struct {
	Enabled        bool            `toml:"enabled"`
	Host           string          `toml:"host"`
	Port           int             `toml:"port"`
	BodyMaxBytes   int64           `toml:"body_max_bytes"`
	AllowedOrigins []string        `toml:"allowed_origins"`
	RateLimit      RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting on the bridge server.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// reservedRoutes are bridge server routes the metrics path may not shadow.
var reservedRoutes = []string{"/bridge", "/healthz"}

// Load reads the TOML config file, if any, and applies CLI overrides.
// Without --config it checks the user config directory, then configs/config.toml.
// Running without any config file is valid and yields the defaults.
func Load(cli *CLI) (*Config, error) {
	var cfg Config

	path := cli.Config
	if path == "" {
		path = findConfig()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// FilePath returns the config file the configuration was read from, or "".
func (c *Config) FilePath() string {
	return c.filePath
}

func (c *Config) applyCLI(cli *CLI) {
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		c.Log.Format = cli.LogFormat
	}
	if cli.Bridge {
		c.Bridge.Enabled = true
	}
	if cli.BridgePort != 0 {
		c.Bridge.Port = cli.BridgePort
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

func (c *Config) validate() error {
	if err := validation.ValidateStruct(&c.Window,
		validation.Field(&c.Window.MinWidth, validation.Min(0.0)),
		validation.Field(&c.Window.MaxWidthFraction, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Window.AspectRatio, validation.Min(0.0)),
	); err != nil {
		return fmt.Errorf("window: %w", err)
	}

	if err := validation.ValidateStruct(&c.Forwarder,
		validation.Field(&c.Forwarder.TimeoutSeconds, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("forwarder: %w", err)
	}

	// The bridge is an open forwarder; it must never listen beyond loopback.
	if err := validation.ValidateStruct(&c.Bridge,
		validation.Field(&c.Bridge.Host, validation.In("", "127.0.0.1", "::1", "localhost")),
		validation.Field(&c.Bridge.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.Bridge.BodyMaxBytes, validation.Min(int64(0))),
	); err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	if c.Bridge.RateLimit.Enabled && c.Bridge.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("bridge.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Bridge.RateLimit.RequestsPerSecond)
	}

	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("", "debug", "info", "warn", "error")),
		validation.Field(&c.Log.Format, validation.In("", "json", "text")),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range reservedRoutes {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields. As with any TOML-backed struct, an
// explicit 0 cannot be told apart from an omitted key.
func (c *Config) setDefaults() {
	if c.Window.MinWidth == 0 {
		c.Window.MinWidth = 800
	}
	if c.Window.MaxWidthFraction == 0 {
		c.Window.MaxWidthFraction = 0.8
	}
	if c.Window.AspectRatio == 0 {
		c.Window.AspectRatio = 16.0 / 9.0
	}
	if c.Bridge.Host == "" {
		c.Bridge.Host = "127.0.0.1"
	}
	if c.Bridge.Port == 0 {
		c.Bridge.Port = 34117
	}
	if c.Bridge.BodyMaxBytes == 0 {
		c.Bridge.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// configSearchPaths lists paths checked in order when no explicit config is given.
func configSearchPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, appDirName, "config.toml"))
	}
	return append(paths, filepath.Join("configs", "config.toml"))
}

func findConfig() string {
	return findConfigInPaths(configSearchPaths())
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the bridge server listen address as host:port.
func (c *BridgeConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
