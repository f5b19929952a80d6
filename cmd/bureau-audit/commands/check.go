// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/audit/cmd/bureau-audit/cli"
	"github.com/bureau-foundation/audit/lib/version"
	"github.com/bureau-foundation/audit/sandbox"
)

// toolName identifies the producer in machine-readable reports.
const toolName = "bureau-audit"

// ExitScoreBelowThreshold is returned by check when --fail-under is not met.
const ExitScoreBelowThreshold = 2

type checkParams struct {
	ConfigParams
	Report    string `json:"-" flag:"report" desc:"also write the machine-readable report to this file (.cbor for CBOR, anything else JSON)"`
	FailUnder int    `json:"-" flag:"fail-under" desc:"exit with status 2 when the final score is below this value"`
}

func checkCommand(env *Environment) *cli.Command {
	var params checkParams

	return &cli.Command{
		Name:    "check",
		Summary: "Run rule scripts against this process and score the sandbox",
		Description: `Read rule scripts and check every rule against the running process.
Each rule prints a verdict: GREAT or GOOD when the sandbox holds, BAD or
UGLY when it does not. The score starts at zero; every checked rule adds
its weight to the maximum, and a failed rule loses that weight again.

With no SCRIPT, or with "-", the script is read from standard input.
Several scripts share one score.

Rules, one per line ("#" starts a comment):

  caps            the capability bounding set is empty (weight 2)
  newprivs        no_new_privs is set (weight 2)
  read PATH       PATH cannot be read (weight 1)
  write PATH      PATH cannot be written or created (weight 1)
  print TEXT      print TEXT, unscored

A leading "~/" in PATH is the invoking user's home directory.`,
		Usage: "bureau-audit check [flags] [SCRIPT...]",
		Examples: []cli.Example{
			{
				Description: "Audit with the rules in a file",
				Command:     "bureau-audit check rules.txt",
			},
			{
				Description: "Fail a CI job unless the sandbox scores at least 12",
				Command:     "bureau-audit check --fail-under 12 rules.txt",
			},
			{
				Description: "Print a JSON report and keep a CBOR copy",
				Command:     "bureau-audit check --format json --report audit.cbor rules.txt",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("check", &params)
		},
		Run: func(args []string) error {
			return runCheck(env, &params, args)
		},
	}
}

func runCheck(env *Environment, params *checkParams, args []string) error {
	settings, err := params.resolve(env.Stderr)
	if err != nil {
		return err
	}
	logger := settings.logger

	home, err := env.ResolveHome()
	if err != nil {
		return err
	}
	realHome := home.LooksReal(env.Prober, settings.heuristic, logger)
	logger.Info("home directory", "path", home.Dir, "real", realHome)

	report := &sandbox.Report{Tool: toolName, Version: version.Short()}
	var (
		sink     sandbox.Sink = report
		textSink *sandbox.TextSink
	)
	if settings.format == cli.FormatText {
		textSink = sandbox.NewTextSink(env.Stdout, sandbox.NewRenderer(env.Stdout, settings.color))
		sink = sandbox.Tee(textSink, report)
	}

	auditor, err := sandbox.NewAuditor(sandbox.AuditorConfig{
		Prober:   env.Prober,
		Sink:     sink,
		RealHome: realHome,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	err = forEachScript(env, args, func(name string, script io.Reader) error {
		result, runErr := sandbox.Run(env.Context, sandbox.RunConfig{
			Script:  script,
			Home:    home,
			Auditor: auditor,
			Logger:  logger.With("script", name),
		})
		report.Record(name, result)
		logger.Debug("script done",
			"script", name,
			"digest", result.ScriptDigest,
			"checked", result.Checked,
			"invalid", result.Invalid,
		)
		return runErr
	})
	if err != nil {
		return err
	}

	if textSink != nil {
		textSink.Summary(report.Score)
	} else if _, err := cli.Emit(env.Stdout, settings.format, report); err != nil {
		return err
	}

	if params.Report != "" {
		if err := writeReport(params.Report, report); err != nil {
			return err
		}
	}

	if report.Result < params.FailUnder {
		logger.Warn("score below threshold", "score", report.Result, "max", report.Score.Max, "fail_under", params.FailUnder)
		return &cli.ExitError{Code: ExitScoreBelowThreshold}
	}
	return nil
}

// writeReport writes report to path as CBOR when the extension is .cbor
// and as JSON otherwise.
func writeReport(path string, report *sandbox.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	if filepath.Ext(path) == ".cbor" {
		err = cli.WriteCBOR(file, report)
	} else {
		err = cli.WriteJSON(file, report)
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
