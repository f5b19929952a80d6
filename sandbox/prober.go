// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"log/slog"

	"golang.org/x/sys/unix"
)

// LevelTrace is below slog.LevelDebug and carries per-probe detail
// (every ancestor visited, every heuristic path checked).
const LevelTrace = slog.LevelDebug - 4

// AccessMode is the mode argument of an access(2) probe.
type AccessMode uint32

const (
	AccessExists AccessMode = unix.F_OK
	AccessWrite  AccessMode = unix.W_OK
	AccessRead   AccessMode = unix.R_OK
)

func (m AccessMode) String() string {
	switch m {
	case AccessExists:
		return "F_OK"
	case AccessWrite:
		return "W_OK"
	case AccessRead:
		return "R_OK"
	default:
		return "mode(?)"
	}
}

// Prober answers the permission questions the auditor asks. Errors from
// Access and Owner are errno values (compare with errors.Is) so the
// auditor can tell "denied" from "absent" from "read-only filesystem".
type Prober interface {
	// Access checks path against mode with access(2) semantics.
	Access(path string, mode AccessMode) error

	// Owner returns the uid owning path, following symlinks.
	Owner(path string) (int, error)

	// EffectiveUID returns the effective uid of the process.
	EffectiveUID() int

	// CapabilityBoundingSet returns the process capability bounding set
	// as a bit mask.
	CapabilityBoundingSet() (uint64, error)

	// NoNewPrivileges reports the state of the no_new_privs flag.
	NoNewPrivileges() (bool, error)
}

// ErrCapabilityFieldMissing is returned when the process status source
// has no CapBnd line (kernels older than 2.6.26).
var ErrCapabilityFieldMissing = errors.New("CapBnd field not found")

// EnvironmentError is a condition that makes every further result
// meaningless, such as an unreadable capability state or an unknown home
// directory. It aborts the run instead of producing a verdict.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}
