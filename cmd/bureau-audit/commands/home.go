// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/audit/cmd/bureau-audit/cli"
)

type homeParams struct {
	ConfigParams
}

// homeReport is the home command's machine-readable output.
type homeReport struct {
	Home      string   `json:"home"`
	Threshold int      `json:"threshold"`
	Found     []string `json:"found"`
	Real      bool     `json:"real"`
}

func homeCommand(env *Environment) *cli.Command {
	var params homeParams

	return &cli.Command{
		Name:    "home",
		Summary: "Show the home directory and whether it looks like the real one",
		Description: `Print the directory "~/" expands to and the files that make it look
like the user's real home. When enough of them are visible (the
threshold), write rules also fail for paths the sandbox could create,
not only for existing ones.`,
		Usage: "bureau-audit home [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("home", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return runHome(env, &params)
		},
	}
}

func runHome(env *Environment, params *homeParams) error {
	settings, err := params.resolve(env.Stderr)
	if err != nil {
		return err
	}

	home, err := env.ResolveHome()
	if err != nil {
		return err
	}

	found := home.HeuristicMatches(env.Prober, settings.heuristic)
	report := homeReport{
		Home:      home.Dir,
		Threshold: settings.heuristic.Threshold,
		Found:     found,
		Real:      settings.heuristic.Threshold > 0 && len(found) >= settings.heuristic.Threshold,
	}

	if handled, err := cli.Emit(env.Stdout, settings.format, report); handled {
		return err
	}

	writer := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "home:\t%s\n", report.Home)
	fmt.Fprintf(writer, "found:\t%d of %d (threshold %d)\n", len(found), len(settings.heuristic.Paths), report.Threshold)
	fmt.Fprintf(writer, "real:\t%t\n", report.Real)
	if err := writer.Flush(); err != nil {
		return err
	}
	for _, path := range found {
		fmt.Fprintf(env.Stdout, "  %s\n", path)
	}
	return nil
}
