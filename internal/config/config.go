package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Fuabioo/hhdt/internal/errors"
	"github.com/Fuabioo/hhdt/internal/source"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HHDT_"

// FileName is the config file looked up in the config directory.
const FileName = "config.json"

// Config holds global configuration for hhdt.
type Config struct {
	Log           LogConfig     `json:"log"`
	Output        OutputConfig  `json:"output"`
	Metrics       MetricsConfig `json:"metrics"`
	DefaultSource source.Source `json:"default_source"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// OutputConfig controls how packages and payloads are printed.
type OutputConfig struct {
	Indent int `json:"indent"`
}

// MetricsConfig controls the optional prometheus listener of the MCP server.
type MetricsConfig struct {
	Addr string `json:"addr"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Output: OutputConfig{
			Indent: 2,
		},
		DefaultSource: source.AppError,
	}
}

// Load reads config.json from dir, falling back to defaults when the file
// does not exist. Environment variables override both.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, FileName)
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.ConfigInvalid(FileName, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.InputRead(FileName, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be enforced by the JSON schema alone.
func (c *Config) Validate() error {
	if !source.Valid(string(c.DefaultSource)) {
		return errors.ConfigInvalid("default_source", fmt.Errorf("unknown source %q", c.DefaultSource))
	}
	if c.Output.Indent < 0 || c.Output.Indent > 8 {
		return errors.ConfigInvalid("output.indent", fmt.Errorf("must be between 0 and 8, got %d", c.Output.Indent))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.ConfigInvalid("log.format", fmt.Errorf("unknown format %q", c.Log.Format))
	}
	return nil
}

// IndentString returns the configured indentation as spaces.
func (c *Config) IndentString() string {
	return strings.Repeat(" ", c.Output.Indent)
}

// envOverride maps an env key (without the prefix) to a setter.
type envOverride struct {
	key   string
	apply func(*Config, string) error
}

var envOverrides = []envOverride{
	{"LOG_LEVEL", func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	}},
	{"LOG_FORMAT", func(c *Config, v string) error {
		c.Log.Format = strings.ToLower(v)
		return nil
	}},
	{"INDENT", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Output.Indent = n
		return nil
	}},
	{"METRICS_ADDR", func(c *Config, v string) error {
		c.Metrics.Addr = v
		return nil
	}},
	{"DEFAULT_SOURCE", func(c *Config, v string) error {
		c.DefaultSource = source.Source(v)
		return nil
	}},
}

func applyEnvOverrides(cfg *Config) error {
	for _, o := range envOverrides {
		val, ok := os.LookupEnv(EnvPrefix + o.key)
		if !ok || val == "" {
			continue
		}
		if err := o.apply(cfg, val); err != nil {
			return errors.ConfigInvalid(EnvPrefix+o.key, err)
		}
	}
	return nil
}
