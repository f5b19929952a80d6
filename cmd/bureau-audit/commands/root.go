// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/bureau-foundation/audit/cmd/bureau-audit/cli"
)

// Root returns the top-level command tree.
func Root(env *Environment) *cli.Command {
	return &cli.Command{
		Name:    "bureau-audit",
		Summary: "Measure how well a sandbox confines the process it runs in",
		Description: `bureau-audit checks, from inside a sandbox, what the sandboxed process
can still do: read or write sensitive paths, keep capabilities, or gain
privileges through setuid binaries. Each check is a line in a rule
script; the result is a score out of the maximum the script allows.

Run it as the sandboxed program. Sandboxes that cannot pass arguments
set BUREAU_AUDIT_ARGS to the command line instead.`,
		Subcommands: []*cli.Command{
			checkCommand(env),
			parseCommand(env),
			homeCommand(env),
			versionCommand(env),
		},
		Examples: []cli.Example{
			{
				Description: "Audit a sandbox with a rule script",
				Command:     "bwrap --ro-bind / / --unshare-all -- bureau-audit check rules.txt",
			},
			{
				Description: "Lint a rule script without probing anything",
				Command:     "bureau-audit parse rules.txt",
			},
		},
	}
}
