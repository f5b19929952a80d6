// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/audit/cmd/bureau-audit/cli"
	"github.com/bureau-foundation/audit/lib/config"
	"github.com/bureau-foundation/audit/sandbox"
)

// Environment is everything a command touches outside its arguments.
// Tests substitute buffers, a fixture prober and a fixed home.
type Environment struct {
	Context context.Context

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prober answers the permission questions asked by rules.
	Prober sandbox.Prober

	// ResolveHome finds the directory "~/" expands to.
	ResolveHome func() (sandbox.Home, error)
}

// SystemEnvironment probes the real process and uses the standard streams.
func SystemEnvironment(ctx context.Context) *Environment {
	return &Environment{
		Context:     ctx,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Prober:      sandbox.NewSystemProber(),
		ResolveHome: sandbox.ResolveHome,
	}
}

// ConfigParams are the flags shared by every command that reads
// configuration.
type ConfigParams struct {
	cli.LoggingParams
	cli.OutputParams
	Config string `json:"-" flag:"config" desc:"configuration file (default $BUREAU_AUDIT_CONFIG)"`
}

// settings is the configuration file merged with command-line flags.
type settings struct {
	color     sandbox.ColorMode
	format    string
	heuristic sandbox.HomeHeuristic
	logger    *slog.Logger
}

// resolve loads the configuration file, lets non-empty flags override it,
// validates the result and builds the logger.
func (p *ConfigParams) resolve(stderr io.Writer) (*settings, error) {
	var (
		cfg *config.Config
		err error
	)
	if p.Config != "" {
		cfg, err = config.LoadFile(p.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if p.Color != "" {
		cfg.Color = p.Color
	}
	if p.Format != "" {
		cfg.Format = p.Format
	}
	if p.Timestamp != "" {
		cfg.Log.Timestamp = p.Timestamp
	}
	if p.Verbose > 0 {
		cfg.Log.Verbosity = min(int(p.Verbose), config.MaxVerbosity)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	color, err := sandbox.ParseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}

	logger, err := cli.NewCommandLogger(cli.LoggerOptions{
		Verbosity: cfg.Log.Verbosity,
		Quiet:     p.Quiet,
		Timestamp: cfg.Log.Timestamp,
		Writer:    stderr,
	})
	if err != nil {
		return nil, err
	}

	heuristic := sandbox.DefaultHomeHeuristic()
	heuristic.Threshold = cfg.HomeHeuristic.Threshold
	if len(cfg.HomeHeuristic.Paths) > 0 {
		heuristic.Paths = cfg.HomeHeuristic.Paths
	}

	return &settings{
		color:     color,
		format:    cfg.Format,
		heuristic: heuristic,
		logger:    logger,
	}, nil
}
