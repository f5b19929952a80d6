// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file when --config is not
// given.
const EnvironmentVariable = "BUREAU_AUDIT_CONFIG"

// Accepted values for the enumerated settings.
var (
	ColorChoices     = []string{"always", "ansi", "auto", "never"}
	FormatChoices    = []string{"text", "json", "cbor"}
	TimestampChoices = []string{"off", "sec", "ms", "us", "ns"}
)

// MaxVerbosity is the highest meaningful log.verbosity: 0 warnings,
// 1 info, 2 debug, 3 trace.
const MaxVerbosity = 3

// Config is the configuration of bureau-audit.
type Config struct {
	// Color selects when severity tags are colored.
	// Values: always, ansi, auto, never. Default: auto
	Color string `yaml:"color" json:"color"`

	// Format selects the report format written to stdout.
	// Values: text, json, cbor. Default: text
	Format string `yaml:"format" json:"format"`

	// Log configures diagnostic output on stderr.
	Log LogConfig `yaml:"log" json:"log"`

	// HomeHeuristic tunes the real-home detection.
	HomeHeuristic HomeHeuristicConfig `yaml:"home_heuristic" json:"home_heuristic"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	// Verbosity is the number of -v flags implied by the file.
	// Default: 0 (warnings and errors only)
	Verbosity int `yaml:"verbosity" json:"verbosity"`

	// Timestamp is the precision of log timestamps.
	// Values: off, sec, ms, us, ns. Default: off
	Timestamp string `yaml:"timestamp" json:"timestamp"`
}

// HomeHeuristicConfig overrides the real-home detection.
type HomeHeuristicConfig struct {
	// Threshold is how many Paths must exist for the home directory to
	// count as the user's real one. Default: 5
	Threshold int `yaml:"threshold" json:"threshold"`

	// Paths are "~/"-relative files and directories to look for. Empty
	// selects the built-in list.
	Paths []string `yaml:"paths" json:"paths"`
}

// Default returns the configuration used when no file is given, and the
// base that a file is merged into.
func Default() *Config {
	return &Config{
		Color:  "auto",
		Format: "text",
		Log: LogConfig{
			Verbosity: 0,
			Timestamp: "off",
		},
		HomeHeuristic: HomeHeuristicConfig{
			Threshold: 5,
		},
	}
}

// Load loads the file named by BUREAU_AUDIT_CONFIG. Unlike a --config
// path, the variable is optional: when it is unset Load returns Default().
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merged over
// Default(). The format follows the extension: .yaml and .yml are YAML,
// .json and .jsonc are JSON with comments and trailing commas allowed.
// Unknown keys are rejected in both.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		err = cfg.decodeYAML(data)
	case ".json", ".jsonc":
		err = cfg.decodeJSONC(data)
	default:
		return nil, fmt.Errorf("%s: unsupported config extension %q (use .yaml, .yml, .json or .jsonc)", path, extension)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) decodeJSONC(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	return decoder.Decode(c)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(ColorChoices, c.Color) {
		errs = append(errs, fmt.Errorf("color must be one of: %v", ColorChoices))
	}
	if !slices.Contains(FormatChoices, c.Format) {
		errs = append(errs, fmt.Errorf("format must be one of: %v", FormatChoices))
	}
	if c.Log.Verbosity < 0 || c.Log.Verbosity > MaxVerbosity {
		errs = append(errs, fmt.Errorf("log.verbosity must be between 0 and %d", MaxVerbosity))
	}
	if !slices.Contains(TimestampChoices, c.Log.Timestamp) {
		errs = append(errs, fmt.Errorf("log.timestamp must be one of: %v", TimestampChoices))
	}
	if c.HomeHeuristic.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("home_heuristic.threshold must be positive"))
	}
	for _, path := range c.HomeHeuristic.Paths {
		if !strings.HasPrefix(path, "~/") {
			errs = append(errs, fmt.Errorf("home_heuristic.paths: %q must start with ~/", path))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
