// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-audit runs a rule script inside a sandbox and reports how well
// the sandbox confines the process it runs in.
//
// Usage:
//
//	bureau-audit check [flags] [SCRIPT...]
//	bureau-audit parse [flags] [SCRIPT...]
//	bureau-audit home [flags]
//	bureau-audit version
//
// Sandboxes that cannot pass arguments through set BUREAU_AUDIT_ARGS
// instead; its whitespace-separated words replace the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bureau-foundation/audit/cmd/bureau-audit/commands"
	"github.com/bureau-foundation/audit/lib/process"
)

// argsVariable replaces the command line when set.
const argsVariable = "BUREAU_AUDIT_ARGS"

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := commandArgs(os.Args[1:], os.LookupEnv)
	return commands.Root(commands.SystemEnvironment(ctx)).Execute(args)
}

// commandArgs returns the arguments to dispatch: the words of
// BUREAU_AUDIT_ARGS when that variable is set, even to an empty value,
// and argv otherwise.
func commandArgs(argv []string, lookup func(string) (string, bool)) []string {
	if value, ok := lookup(argsVariable); ok {
		return strings.Fields(value)
	}
	return argv
}
