// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
)

// stdinName stands for standard input in script arguments and reports.
const stdinName = "-"

// forEachScript calls fn with every script named in args, in order.
// No arguments means standard input. Standard input is read at most once.
func forEachScript(env *Environment, args []string, fn func(name string, script io.Reader) error) error {
	if len(args) == 0 {
		args = []string{stdinName}
	}

	stdinUsed := false
	for _, name := range args {
		if name == stdinName {
			if stdinUsed {
				return fmt.Errorf("standard input named more than once")
			}
			stdinUsed = true
			if err := fn(name, env.Stdin); err != nil {
				return err
			}
			continue
		}

		if err := runScriptFile(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func runScriptFile(path string, fn func(name string, script io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening rule script: %w", err)
	}
	defer file.Close()
	return fn(path, file)
}
