// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/audit/cmd/bureau-audit/cli"
	"github.com/bureau-foundation/audit/lib/version"
)

func versionCommand(env *Environment) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			fmt.Fprintf(env.Stdout, "bureau-audit %s\n", version.Full())
			if digest, err := version.SelfDigest(); err == nil {
				fmt.Fprintf(env.Stdout, "  BLAKE3: %s\n", digest)
			}
			fmt.Fprintf(env.Stdout, "\n%s\n", version.Notice)
			return nil
		},
	}
}
