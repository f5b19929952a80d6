// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for audit packages.
//
// [TempTree] lays out a directory tree under t.TempDir() from a compact
// list of relative paths, so permission tests can build homes and
// scratch areas in one call. [Chmod] changes a mode and restores an
// owner-writable one at cleanup, since t.TempDir() cannot remove
// directories the test made unwritable.
//
// [SkipIfRoot] skips tests whose expectations depend on permission
// checks: access(2) grants root read and write on everything, so
// "cannot write" cases never hold under uid 0.
//
// [StatusFile] writes a /proc/self/status fixture with a chosen CapBnd
// line for prober tests that must not depend on the host.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as paths that must not exist yet.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no dependencies on other packages of this module.
package testutil
