// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// StatusFile writes a minimal /proc/<pid>/status fixture and returns its
// path. capBnd is written verbatim after "CapBnd:\t"; pass "" to omit the
// line entirely, as kernels before 2.6.26 do.
func StatusFile(t testing.TB, capBnd string) string {
	t.Helper()

	content := "Name:\tbureau-audit\n" +
		"Umask:\t0022\n" +
		"State:\tR (running)\n" +
		"Uid:\t1000\t1000\t1000\t1000\n" +
		"CapInh:\t0000000000000000\n" +
		"CapPrm:\t0000000000000000\n" +
		"CapEff:\t0000000000000000\n"
	if capBnd != "" {
		content += "CapBnd:\t" + capBnd + "\n"
	}
	content += "CapAmb:\t0000000000000000\n" +
		"NoNewPrivs:\t1\n" +
		"Seccomp:\t2\n"

	path := filepath.Join(t.TempDir(), "status")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing status fixture: %v", err)
	}
	return path
}
