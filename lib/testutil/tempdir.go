// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TempTree creates a fresh temporary directory and populates it. Entries
// ending in "/" become directories, everything else becomes an empty
// file; missing parents are created either way. Returns the root.
//
//	home := testutil.TempTree(t, ".ssh/", ".gitconfig", ".cache/thumbnails/")
func TempTree(t testing.TB, entries ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, entry := range entries {
		path := filepath.Join(root, entry)
		if strings.HasSuffix(entry, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("creating directory %s: %v", entry, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating parent of %s: %v", entry, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("creating file %s: %v", entry, err)
		}
	}
	return root
}

// Chmod sets the mode of path and registers a cleanup restoring 0o755 so
// that t.TempDir() can remove it afterwards.
func Chmod(t testing.TB, path string, mode os.FileMode) {
	t.Helper()

	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
	t.Cleanup(func() {
		_ = os.Chmod(path, 0o755)
	})
}
