// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"golang.org/x/sys/unix"
)

// fakeProber answers probes from fixed tables. Paths missing from a
// table behave as if they do not exist.
type fakeProber struct {
	read     map[string]error
	write    map[string]error
	existing map[string]bool
	owners   map[string]int
	euid     int

	capabilities    uint64
	capabilitiesErr error
	noNewPrivs      bool
	noNewPrivsErr   error

	// probes records every Access call as "MODE path".
	probes []string
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		read:     make(map[string]error),
		write:    make(map[string]error),
		existing: make(map[string]bool),
		owners:   make(map[string]int),
		euid:     1000,
	}
}

func (p *fakeProber) Access(path string, mode AccessMode) error {
	p.probes = append(p.probes, mode.String()+" "+path)

	var table map[string]error
	switch mode {
	case AccessRead:
		table = p.read
	case AccessWrite:
		table = p.write
	default:
		_, readable := p.read[path]
		_, writable := p.write[path]
		if p.existing[path] || readable || writable {
			return nil
		}
		return unix.ENOENT
	}

	if err, ok := table[path]; ok {
		return err
	}
	return unix.ENOENT
}

func (p *fakeProber) Owner(path string) (int, error) {
	if uid, ok := p.owners[path]; ok {
		return uid, nil
	}
	return 0, unix.ENOENT
}

func (p *fakeProber) EffectiveUID() int {
	return p.euid
}

func (p *fakeProber) CapabilityBoundingSet() (uint64, error) {
	return p.capabilities, p.capabilitiesErr
}

func (p *fakeProber) NoNewPrivileges() (bool, error) {
	return p.noNewPrivs, p.noNewPrivsErr
}

// sandboxedProber models a well-configured sandbox: no capabilities,
// no_new_privs set, /etc/shadow unreadable, and /tmp read-only.
func sandboxedProber() *fakeProber {
	prober := newFakeProber()
	prober.capabilities = 0
	prober.noNewPrivs = true
	prober.read["/etc/shadow"] = unix.EACCES
	prober.write["/tmp"] = unix.EROFS
	return prober
}
