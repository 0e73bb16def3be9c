// Package config holds the settings of the cfront driver. Settings come
// from built in defaults, an optional TOML or YAML file and the
// environment, in that order.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension. Unknown
// extensions are read as TOML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

type Output struct {
	// Color enables styled error reports.
	Color bool `toml:"color" yaml:"color"`
	// ShowSource prints the offending source line under an error.
	ShowSource bool `toml:"show_source" yaml:"show_source"`
}

type Debug struct {
	// Stack attaches a stack trace to semantic errors.
	Stack bool `toml:"stack" yaml:"stack"`
}

type Config struct {
	Log    Log    `toml:"log" yaml:"log"`
	Output Output `toml:"output" yaml:"output"`
	Debug  Debug  `toml:"debug" yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
		Output: Output{
			Color:      true,
			ShowSource: true,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.decode(content, DetectFormat(path)); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) decode(content []byte, format Format) error {
	switch format {
	case FormatTOML:
		_, err := toml.Decode(string(content), cfg)
		return err
	case FormatYAML:
		return yaml.Unmarshal(content, cfg)
	}
	return fmt.Errorf("unsupported format %s", format)
}

// ApplyEnv overrides settings from CFRONT_LOG_LEVEL, CFRONT_LOG_FORMAT and
// CCDEBUG.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv("CFRONT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CFRONT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if os.Getenv("CCDEBUG") == "true" {
		cfg.Debug.Stack = true
	}
}

func (cfg *Config) Validate() error {
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return err
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, want text or json", cfg.Log.Format)
	}
	return nil
}

// SlogLevel is the configured log level. Invalid levels map to warn;
// Validate reports them.
func (cfg *Config) SlogLevel() slog.Level {
	l, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}

// Encode renders cfg in format, for writing a starter config file.
func (cfg *Config) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(cfg)
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}
