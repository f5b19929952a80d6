// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/audit/cmd/bureau-audit/cli"
	"github.com/bureau-foundation/audit/sandbox"
)

type parseParams struct {
	ConfigParams
}

// parsedScript is the parse command's machine-readable output per script.
type parsedScript struct {
	Name string `json:"name"`
	sandbox.LintResult
}

func parseCommand(env *Environment) *cli.Command {
	var params parseParams

	return &cli.Command{
		Name:    "parse",
		Summary: "Check rule scripts for syntax errors without auditing",
		Description: `Parse rule scripts and print every rule in normalized form, with "~/"
expanded, followed by the maximum score the scripts allow. Nothing is
probed. Invalid lines are reported with their line numbers and make the
command fail.`,
		Usage: "bureau-audit parse [flags] [SCRIPT...]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("parse", &params)
		},
		Run: func(args []string) error {
			return runParse(env, &params, args)
		},
	}
}

func runParse(env *Environment, params *parseParams, args []string) error {
	settings, err := params.resolve(env.Stderr)
	if err != nil {
		return err
	}

	home, err := env.ResolveHome()
	if err != nil {
		return err
	}

	var scripts []parsedScript
	err = forEachScript(env, args, func(name string, script io.Reader) error {
		result, lintErr := sandbox.Lint(script, home)
		if lintErr != nil {
			return fmt.Errorf("reading %s: %w", name, lintErr)
		}
		scripts = append(scripts, parsedScript{Name: name, LintResult: result})
		return nil
	})
	if err != nil {
		return err
	}

	invalid, maxScore := 0, 0
	for _, script := range scripts {
		invalid += len(script.Invalid)
		maxScore += script.MaxScore
		for _, line := range script.Invalid {
			settings.logger.Error(line.Error, "script", script.Name, "number", line.Number)
		}
	}

	if handled, err := cli.Emit(env.Stdout, settings.format, scripts); err != nil {
		return err
	} else if !handled {
		for _, script := range scripts {
			for _, line := range script.Rules {
				fmt.Fprintln(env.Stdout, line.Normalized)
			}
		}
		fmt.Fprintf(env.Stdout, "Maximum score: %d\n", maxScore)
	}

	if invalid > 0 {
		return fmt.Errorf("%d invalid rule line(s)", invalid)
	}
	return nil
}
