// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	// Mutates package variables; not parallel.
	savedCommit, savedDirty, savedTime := GitCommit, GitDirty, BuildTime
	t.Cleanup(func() { GitCommit, GitDirty, BuildTime = savedCommit, savedDirty, savedTime })

	GitCommit, GitDirty, BuildTime = "abc1234", "false", "2026-10-17T00:00:00Z"
	if got, want := Info(), Version+" (abc1234, 2026-10-17T00:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info() = %q, want dirty marker", got)
	}

	if full := Full(); !strings.HasPrefix(full, Info()) || !strings.Contains(full, "Platform:") {
		t.Errorf("Full() = %q", full)
	}
}

func TestFileDigest(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	first := filepath.Join(directory, "first")
	second := filepath.Join(directory, "second")
	if err := os.WriteFile(first, []byte("caps\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("newprivs\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	firstDigest, err := FileDigest(first)
	if err != nil {
		t.Fatalf("FileDigest: %v", err)
	}
	if len(firstDigest) != 64 {
		t.Errorf("FileDigest() = %q, want 64 hex characters", firstDigest)
	}
	secondDigest, err := FileDigest(second)
	if err != nil {
		t.Fatalf("FileDigest: %v", err)
	}
	if firstDigest == secondDigest {
		t.Error("different content produced the same digest")
	}

	if _, err := FileDigest(filepath.Join(directory, "missing")); err == nil {
		t.Error("FileDigest of a missing file should fail")
	}
}

func TestSelfDigest(t *testing.T) {
	t.Parallel()

	digest, err := SelfDigest()
	if err != nil {
		t.Fatalf("SelfDigest: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("SelfDigest() = %q, want 64 hex characters", digest)
	}
}
