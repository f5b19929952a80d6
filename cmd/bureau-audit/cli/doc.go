// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for bureau-audit.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in
// cmd/bureau-audit/main.go and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]. [LoggingParams] and [OutputParams] are embedded by
// commands that log or emit reports.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// [NewCommandLogger] builds the stderr logger from -q, -v and
// --timestamp. [Emit] writes machine-readable output as JSON or CBOR.
// [ExitError] lets a command choose its exit code without an extra
// error message.
package cli
