// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Home is the invoking user's home directory, resolved once per run.
// The zero value performs no expansion.
type Home struct {
	Dir string
}

// ResolveHome looks up the home directory of the current user. A run
// cannot interpret "~/" rules without it, so failure is an
// *EnvironmentError.
func ResolveHome() (Home, error) {
	directory, err := homedir.Dir()
	if err != nil {
		return Home{}, &EnvironmentError{Op: "determining home directory", Err: err}
	}
	if directory == "" {
		return Home{}, &EnvironmentError{
			Op:  "determining home directory",
			Err: errors.New("home directory is empty"),
		}
	}
	return Home{Dir: directory}, nil
}

// Expand replaces a leading "~/" with the home directory. Any other input,
// including "~", "~user/..." and paths containing "~/" later on, is
// returned unchanged. The rest of the path is appended verbatim, without
// cleaning.
func (h Home) Expand(path string) string {
	if h.Dir == "" {
		return path
	}
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	return strings.TrimSuffix(h.Dir, "/") + "/" + rest
}

// HomeHeuristic decides whether the home directory visible to the process
// is the user's real one rather than a sandbox's private, empty home.
// It counts how many of Paths exist and compares against Threshold.
type HomeHeuristic struct {
	Paths     []string `yaml:"paths" json:"paths"`
	Threshold int      `yaml:"threshold" json:"threshold"`
}

// DefaultHomeHeuristic returns the built-in list of files and directories
// that accumulate in a lived-in home directory. The list and threshold
// are a heuristic and may change between releases.
func DefaultHomeHeuristic() HomeHeuristic {
	return HomeHeuristic{
		Threshold: 5,
		Paths: []string{
			"~/.bash_history",
			"~/.gitconfig",
			"~/.gnupg",
			"~/.lesshst",
			"~/.netrc",
			"~/.pki",
			"~/.ssh",
			"~/.var",
			"~/.viminfo",
			"~/.wget-hsts",
			"~/.cache/dconf",
			"~/.cache/flatpak",
			"~/.cache/gegl-0.4",
			"~/.cache/gnome-software",
			"~/.cache/gstreamer-1.0",
			"~/.cache/ibus",
			"~/.cache/mesa_shader_cache",
			"~/.cache/samba",
			"~/.cache/thumbnails",
			"~/.cache/tracker",
			"~/.cache/tracker3",
			"~/.config/autostart",
			"~/.config/enchant",
			"~/.local/bin",
			"~/.local/share/flatpak",
			"~/.local/share/gstreamer-1.0",
			"~/.local/share/gvfs-metadata",
			"~/.local/share/pki",
			"~/.local/share/recently-used.xbel",
			"~/.local/share/tracker",
			"~/.local/share/Trash",
			"~/.local/share/webkitgtk",
		},
	}
}

// LooksReal reports whether at least heuristic.Threshold of the
// heuristic paths exist under h. Counting stops as soon as the threshold
// is reached. Call it once during setup and pass the result to the
// Auditor.
func (h Home) LooksReal(prober Prober, heuristic HomeHeuristic, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if heuristic.Threshold <= 0 {
		return false
	}

	found := 0
	for _, path := range heuristic.Paths {
		expanded := h.Expand(path)
		logger.Log(context.Background(), LevelTrace, "real home: checking", "path", expanded)
		if err := prober.Access(expanded, AccessExists); err != nil {
			continue
		}
		logger.Debug("real home: found", "path", expanded)
		found++
		if found >= heuristic.Threshold {
			return true
		}
	}
	return false
}

// HeuristicMatches returns every heuristic path that exists under h,
// expanded, without stopping at the threshold.
func (h Home) HeuristicMatches(prober Prober, heuristic HomeHeuristic) []string {
	var found []string
	for _, path := range heuristic.Paths {
		expanded := h.Expand(path)
		if err := prober.Access(expanded, AccessExists); err == nil {
			found = append(found, expanded)
		}
	}
	return found
}
