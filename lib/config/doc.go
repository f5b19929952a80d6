// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for bureau-audit.
//
// Configuration is loaded from a single file specified by either the
// BUREAU_AUDIT_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no ~/.config discovery and no
// automatic file search. With neither set, [Default] applies.
//
// The file format follows the extension: YAML for .yaml and .yml, JSON
// with comments for .json and .jsonc. Unknown keys are errors, so a
// misspelled setting never silently falls back to its default.
// Command-line flags override file values; that merge happens in the
// command, not here.
//
// Key exports:
//
//   - [Config] -- color, format, log and home_heuristic settings
//   - [Default] -- the built-in settings
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- enum and range checks, all errors joined
//
// This package depends on no other packages of this module.
package config
