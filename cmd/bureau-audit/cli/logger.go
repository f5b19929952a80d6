// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/bureau-foundation/audit/sandbox"
)

// LevelTrace is the level the audit engine uses for per-line and
// per-probe detail. Records at this level are labeled TRACE.
const LevelTrace = sandbox.LevelTrace

// LoggingParams adds -q, -v and --timestamp to a command's parameter
// struct by embedding.
type LoggingParams struct {
	Quiet     bool   `json:"-" flag:"quiet,q" desc:"only log errors"`
	Verbose   Count  `json:"-" flag:"verbose,v" desc:"log more (repeat for debug and trace)"`
	Timestamp string `json:"-" flag:"timestamp" desc:"log timestamp precision: off, sec, ms, us or ns (default from config, off)"`
}

// LoggerOptions configures [NewCommandLogger].
type LoggerOptions struct {
	// Verbosity is the number of -v flags: 0 warn, 1 info, 2 debug,
	// 3 or more trace.
	Verbosity int

	// Quiet drops everything below error, whatever the verbosity.
	Quiet bool

	// Timestamp is the time precision: "off" (or empty), "sec", "ms",
	// "us" or "ns".
	Timestamp string

	// Writer receives log records. Nil means stderr.
	Writer io.Writer
}

// Level maps the options to the minimum level logged.
func (o LoggerOptions) Level() slog.Level {
	switch {
	case o.Quiet:
		return slog.LevelError
	case o.Verbosity <= 0:
		return slog.LevelWarn
	case o.Verbosity == 1:
		return slog.LevelInfo
	case o.Verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// NewCommandLogger creates a structured logger for diagnostics. Audit
// results go to stdout; everything written here is about the run itself
// (invalid lines, probe failures, traces).
//
// When the writer is a terminal, uses slog.TextHandler for human-readable
// output. When it is piped or redirected (CI, scripts), uses
// slog.JSONHandler for machine-parseable output.
func NewCommandLogger(options LoggerOptions) (*slog.Logger, error) {
	writer := options.Writer
	if writer == nil {
		writer = os.Stderr
	}

	replaceTime, err := timestampReplacer(options.Timestamp)
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{
		Level: options.Level(),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.TimeKey:
				return replaceTime(attr)
			case slog.LevelKey:
				if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelTrace {
					return slog.String(slog.LevelKey, "TRACE")
				}
			}
			return attr
		},
	}

	var handler slog.Handler
	if isTerminal(writer) {
		handler = slog.NewTextHandler(writer, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(writer, handlerOptions)
	}
	return slog.New(handler), nil
}

// timestampReplacer returns the time attribute rewrite for precision.
func timestampReplacer(precision string) (func(slog.Attr) slog.Attr, error) {
	format := ""
	switch precision {
	case "", "off":
		return func(slog.Attr) slog.Attr { return slog.Attr{} }, nil
	case "sec":
		format = "2006-01-02T15:04:05Z07:00"
	case "ms":
		format = "2006-01-02T15:04:05.000Z07:00"
	case "us":
		format = "2006-01-02T15:04:05.000000Z07:00"
	case "ns":
		format = time.RFC3339Nano
	default:
		return nil, fmt.Errorf("invalid timestamp precision %q: valid choices are off, sec, ms, us and ns", precision)
	}
	return func(attr slog.Attr) slog.Attr {
		if stamp, ok := attr.Value.Any().(time.Time); ok {
			return slog.String(slog.TimeKey, stamp.Format(format))
		}
		return attr
	}, nil
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
