// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// RunConfig describes one pass over a rule script.
type RunConfig struct {
	// Script is the rule source, read line by line until EOF.
	Script io.Reader

	// Home expands "~/" in read and write rules.
	Home Home

	// Auditor checks each parsed rule.
	Auditor *Auditor

	// Logger receives parse errors and line traces. Nil discards.
	Logger *slog.Logger
}

// RunResult summarizes a run.
type RunResult struct {
	// Score is the auditor's final score.
	Score Score

	// ScriptDigest is the BLAKE3 hex digest of every byte read from
	// the script, so machine reports can be tied to a rule file.
	ScriptDigest string

	// Checked counts scored rules that were checked.
	Checked int

	// Invalid counts lines rejected by the parser.
	Invalid int
}

// Run reads the script, skips blank lines and "#" comments, parses each
// remaining line and checks it in order. Invalid lines are logged and
// skipped. A read error ends the run early with the results gathered so
// far. An *EnvironmentError from the auditor, or cancellation of ctx
// between lines, aborts the run and is returned alongside the partial
// result.
func Run(ctx context.Context, config RunConfig) (RunResult, error) {
	if config.Auditor == nil {
		return RunResult{}, errors.New("run requires an auditor")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	scanner := newScriptScanner(config.Script)

	var result RunResult
	finish := func() RunResult {
		result.Score = config.Auditor.Score()
		result.ScriptDigest = scanner.Digest()
		return result
	}

	for scanner.Next() {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		number, line := scanner.Line()
		logger.Log(ctx, LevelTrace, "rule line", "number", number, "line", line)

		rule, err := ParseRule(line, config.Home)
		if err != nil {
			logger.Error(err.Error(), "number", number)
			result.Invalid++
			continue
		}

		if rule.Class() != ClassNone {
			result.Checked++
		}
		if err := config.Auditor.Check(rule); err != nil {
			return finish(), err
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("an error occurred while processing the rules", "error", err)
	}

	return finish(), nil
}
