// Package config loads the service configuration from TOML or YAML files
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	watermark "github.com/gcslaoli/gemini-watermark-server"
)

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr           string `toml:"addr" yaml:"addr"`
	MaxConnections int    `toml:"max_connections" yaml:"max_connections"`
	MaxUploadBytes int64  `toml:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// EngineConfig locates the reference overlays and sets the ink and
// background colours as hex strings.
type EngineConfig struct {
	Assets       string `toml:"assets" yaml:"assets"`
	Ink          string `toml:"ink" yaml:"ink"`
	Background   string `toml:"background" yaml:"background"`
	UpscaleLarge bool   `toml:"upscale_large" yaml:"upscale_large"`
}

// FetchConfig bounds remote image downloads.
type FetchConfig struct {
	Timeout   int    `toml:"timeout" yaml:"timeout"` // seconds
	MaxBytes  int64  `toml:"max_bytes" yaml:"max_bytes"`
	UserAgent string `toml:"user_agent" yaml:"user_agent"`
}

// TimeoutDuration returns the fetch timeout, 30s when unset.
func (f FetchConfig) TimeoutDuration() time.Duration {
	if f.Timeout > 0 {
		return time.Duration(f.Timeout) * time.Second
	}
	return 30 * time.Second
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// WatchConfig configures the directory watcher.
type WatchConfig struct {
	Dir      string `toml:"dir" yaml:"dir"`
	Out      string `toml:"out" yaml:"out"`
	Debounce int    `toml:"debounce" yaml:"debounce"` // milliseconds, 0 = default (500ms)
}

// DebounceDuration returns how long a file must stay quiet before it is processed.
func (w WatchConfig) DebounceDuration() time.Duration {
	if w.Debounce > 0 {
		return time.Duration(w.Debounce) * time.Millisecond
	}
	return 500 * time.Millisecond
}

// Config is the complete gwatermark configuration.
type Config struct {
	Server ServerConfig `toml:"server" yaml:"server"`
	Engine EngineConfig `toml:"engine" yaml:"engine"`
	Fetch  FetchConfig  `toml:"fetch" yaml:"fetch"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Watch  WatchConfig  `toml:"watch" yaml:"watch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":3000",
			MaxConnections: 256,
			MaxUploadBytes: 32 << 20,
		},
		Engine: EngineConfig{
			Assets:     "assets",
			Ink:        "#FFFFFF",
			Background: "#000000",
		},
		Fetch: FetchConfig{
			Timeout:   30,
			MaxBytes:  32 << 20,
			UserAgent: "gwatermark/1.0",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Out: "unwatermarked",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error. The format is chosen by extension: .toml,
// .yaml or .yml.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if port, ok := lookup("PORT"); ok && port != "" {
		cfg.Server.Addr = ":" + port
	}
	if dir, ok := lookup("GWATERMARK_ASSETS"); ok && dir != "" {
		cfg.Engine.Assets = dir
	}
	if level, ok := lookup("GWATERMARK_LOG_LEVEL"); ok && level != "" {
		cfg.Log.Level = level
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections must not be negative")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be positive")
	}
	if _, err := parseInk(c.Engine.Ink); err != nil {
		return fmt.Errorf("engine.ink: %w", err)
	}
	if _, err := parseInk(c.Engine.Background); err != nil {
		return fmt.Errorf("engine.background: %w", err)
	}
	return nil
}

// EngineOptions translates the engine section into watermark options.
func (c *Config) EngineOptions() ([]watermark.Option, error) {
	ink, err := parseInk(c.Engine.Ink)
	if err != nil {
		return nil, fmt.Errorf("engine.ink: %w", err)
	}
	bg, err := parseInk(c.Engine.Background)
	if err != nil {
		return nil, fmt.Errorf("engine.background: %w", err)
	}

	opts := []watermark.Option{watermark.WithInk(ink), watermark.WithBackground(bg)}
	if c.Engine.UpscaleLarge {
		opts = append(opts, watermark.WithUpscaledLarge())
	}
	return opts, nil
}

func parseInk(hex string) (watermark.Ink, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return watermark.Ink{}, err
	}
	return watermark.InkFromColor(c), nil
}
