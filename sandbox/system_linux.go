// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// DefaultStatusPath is the per-process status file holding CapBnd.
const DefaultStatusPath = "/proc/self/status"

// SystemProber probes the running process and the real filesystem.
type SystemProber struct {
	// StatusPath overrides DefaultStatusPath. Tests point it at fixture
	// files.
	StatusPath string
}

// NewSystemProber returns a prober reading /proc/self/status.
func NewSystemProber() *SystemProber {
	return &SystemProber{StatusPath: DefaultStatusPath}
}

// Access calls access(2). Checks use the real uid and gid, as the kernel
// does for access(2).
func (p *SystemProber) Access(path string, mode AccessMode) error {
	return unix.Access(path, uint32(mode))
}

// Owner stats path and returns its owning uid.
func (p *SystemProber) Owner(path string) (int, error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return 0, err
	}
	return int(stat.Uid), nil
}

// EffectiveUID returns geteuid(2).
func (p *SystemProber) EffectiveUID() int {
	return unix.Geteuid()
}

// CapabilityBoundingSet parses the hexadecimal CapBnd field of the status
// file.
func (p *SystemProber) CapabilityBoundingSet() (uint64, error) {
	statusPath := p.StatusPath
	if statusPath == "" {
		statusPath = DefaultStatusPath
	}

	data, err := os.ReadFile(statusPath)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", statusPath, err)
	}
	return parseCapabilityBoundingSet(data)
}

func parseCapabilityBoundingSet(status []byte) (uint64, error) {
	scanner := bufio.NewScanner(bytes.NewReader(status))
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "CapBnd:")
		if !ok {
			continue
		}
		mask, err := strconv.ParseUint(strings.TrimSpace(value), 16, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing CapBnd %q: %w", strings.TrimSpace(value), err)
		}
		return mask, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w; is the kernel older than 2.6.26?", ErrCapabilityFieldMissing)
}

// NoNewPrivileges calls prctl(PR_GET_NO_NEW_PRIVS).
func (p *SystemProber) NoNewPrivileges() (bool, error) {
	state, err := unix.PrctlRetInt(unix.PR_GET_NO_NEW_PRIVS, 0, 0, 0, 0)
	if err != nil {
		return false, fmt.Errorf("prctl(PR_GET_NO_NEW_PRIVS): %w", err)
	}
	switch state {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("prctl(PR_GET_NO_NEW_PRIVS) returned unexpected value %d", state)
	}
}
