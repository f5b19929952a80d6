// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// AuditorConfig holds the collaborators of an Auditor. Everything that
// used to be process-wide state (home heuristic, output) is passed in.
type AuditorConfig struct {
	// Prober answers permission questions. Required.
	Prober Prober

	// Sink receives verdicts and announcements. Required.
	Sink Sink

	// RealHome is the cached result of Home.LooksReal. When true, a
	// path that does not exist but could be created in a writable
	// ancestor counts as a violation.
	RealHome bool

	// Logger receives probe errors and trace output. Nil discards.
	Logger *slog.Logger
}

// Auditor checks rules one at a time and keeps the running Score. It is
// not safe for concurrent use: checks must be serialized so that every
// check adds its weight exactly once, in order.
type Auditor struct {
	prober   Prober
	sink     Sink
	realHome bool
	logger   *slog.Logger
	score    Score
}

// NewAuditor creates an Auditor with a zero score.
func NewAuditor(config AuditorConfig) (*Auditor, error) {
	if config.Prober == nil {
		return nil, errors.New("auditor requires a prober")
	}
	if config.Sink == nil {
		return nil, errors.New("auditor requires a sink")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Auditor{
		prober:   config.Prober,
		sink:     config.Sink,
		realHome: config.RealHome,
		logger:   logger,
	}, nil
}

// Score returns the totals accumulated so far.
func (a *Auditor) Score() Score {
	return a.score
}

// Check dispatches rule to the check for its kind. The only error
// returned is an *EnvironmentError; recoverable probe failures are logged.
func (a *Auditor) Check(rule Rule) error {
	switch rule.Kind() {
	case KindCapabilities:
		return a.CheckCapabilities()
	case KindNoNewPrivileges:
		a.CheckNoNewPrivileges()
	case KindAnnounce:
		a.Announce(rule.Text())
	case KindDenyRead:
		a.CheckNoRead(rule.Path())
	case KindDenyWrite:
		a.CheckNoWrite(rule.Path())
	default:
		return fmt.Errorf("rule of unknown %s", rule.Kind())
	}
	return nil
}

// Announce forwards text to the sink. It has no effect on the score.
func (a *Auditor) Announce(text string) {
	a.sink.Announce(text)
}

// CheckCapabilities verifies that the capability bounding set is empty.
// An unreadable or malformed capability state is returned as an
// *EnvironmentError and no verdict is emitted.
func (a *Auditor) CheckCapabilities() error {
	rule := CapabilitiesRule()
	a.begin(rule)

	mask, err := a.prober.CapabilityBoundingSet()
	if err != nil {
		return &EnvironmentError{Op: "reading capability bounding set", Err: err}
	}
	a.logger.Debug("capability bounding set", "mask", fmt.Sprintf("%016x", mask))

	if mask == 0 {
		a.judge(rule, true, "The capability bounding set is empty.")
	} else {
		a.logger.Debug("capabilities retained", "capabilities", CapabilityNames(mask))
		a.judge(rule, false, "The capability bounding set is NOT empty.")
	}
	return nil
}

// CheckNoNewPrivileges verifies that no_new_privs is set. If the flag
// cannot be queried the failure is logged and no verdict is emitted.
func (a *Auditor) CheckNoNewPrivileges() {
	rule := NoNewPrivilegesRule()
	a.begin(rule)

	set, err := a.prober.NoNewPrivileges()
	if err != nil {
		a.probeFailed(rule, "failed to get no_new_privs state", "error", err)
		return
	}
	if set {
		a.judge(rule, true, "no_new_privs is set, the sandbox can not acquire new privileges using execve.")
	} else {
		a.judge(rule, false, "no_new_privs is NOT set, the sandbox can acquire new privileges using execve.")
	}
}

// CheckNoRead verifies that path cannot be read.
func (a *Auditor) CheckNoRead(path string) {
	rule := DenyReadRule(path)
	a.begin(rule)
	a.warnRelative(rule)

	err := a.prober.Access(path, AccessRead)
	switch {
	case err == nil:
		a.judge(rule, false, fmt.Sprintf("The sandbox can read %s.", path))
	case errors.Is(err, unix.EACCES):
		a.judge(rule, true, fmt.Sprintf("The sandbox cannot read %s.", path))
	case errors.Is(err, unix.ENOENT):
		a.judge(rule, true, fmt.Sprintf("The sandbox cannot read %s because it does not exist.", path))
	default:
		a.probeFailed(rule, "failed to check read access", "path", path, "error", err)
	}
}

// CheckNoWrite verifies that path can neither be written nor created.
//
// A missing path is as good as writable if some existing ancestor is
// writable, so the check walks from path towards the root and stops at
// the first ancestor that exists:
//
//   - ENOENT: move on to the parent. This is the only case that continues.
//   - EACCES: GOOD, unless the denial is on path itself and path is owned
//     by the effective uid, which can chmod it back (UGLY).
//   - EROFS: GOOD.
//   - writable path itself: UGLY.
//   - writable strict ancestor: the path can be created. That only counts
//     as a violation when running in the user's real home; a private
//     scratch home that is writable isolates nothing worth protecting.
//   - anything else: logged, no verdict.
func (a *Auditor) CheckNoWrite(path string) {
	rule := DenyWriteRule(path)
	a.begin(rule)
	a.warnRelative(rule)

	chain := ancestorChain(path)
	for _, ancestor := range chain {
		a.logger.Log(context.Background(), LevelTrace, "probing write access", "path", path, "ancestor", ancestor)

		err := a.prober.Access(ancestor, AccessWrite)
		switch {
		case err == nil && ancestor == chain[0]:
			a.judge(rule, false, fmt.Sprintf("The sandbox can write to %s.", path))
		case err == nil && a.realHome:
			a.judge(rule, false, fmt.Sprintf("The sandbox can create %s.", path))
		case err == nil:
			a.judge(rule, true, fmt.Sprintf("The sandbox cannot write to %s.", path))
		case errors.Is(err, unix.ENOENT):
			continue
		case errors.Is(err, unix.EACCES):
			if ancestor == chain[0] && a.ownedByEffectiveUser(ancestor) {
				a.judge(rule, false, fmt.Sprintf("The sandbox can write to %s after a chmod.", path))
			} else {
				a.judge(rule, true, fmt.Sprintf("The sandbox cannot write to %s.", path))
			}
		case errors.Is(err, unix.EROFS):
			a.judge(rule, true, fmt.Sprintf("The sandbox cannot write to %s.", path))
		default:
			a.probeFailed(rule, "failed to check write access",
				"path", path, "ancestor", ancestor, "error", err)
		}
		return
	}

	a.probeFailed(rule, "no existing ancestor found", "path", path)
}

// ownedByEffectiveUser reports whether path exists and belongs to the
// effective uid.
func (a *Auditor) ownedByEffectiveUser(path string) bool {
	uid, err := a.prober.Owner(path)
	if err != nil {
		a.logger.Debug("cannot determine owner", "path", path, "error", err)
		return false
	}
	return uid == a.prober.EffectiveUID()
}

// begin counts the rule's weight into Max. Every check calls it first,
// before any probe, so a check that ends without a verdict still counts.
func (a *Auditor) begin(rule Rule) {
	a.score.expect(rule.Class())
}

// judge emits the verdict for rule and charges the weight on violations.
func (a *Auditor) judge(rule Rule, compliant bool, message string) {
	class := rule.Class()
	if !compliant {
		a.score.penalize(class)
	}
	a.sink.Verdict(Verdict{
		Rule:     rule,
		Severity: severityFor(class, compliant),
		Message:  message,
	})
}

// probeFailed logs a check that ended without a verdict. Its weight stays
// in Max with no matching entry in Lost.
func (a *Auditor) probeFailed(rule Rule, message string, attributes ...any) {
	attributes = append(attributes, "rule", rule.String(), "unresolved_weight", rule.Class().Weight())
	a.logger.Error(message, attributes...)
}

func (a *Auditor) warnRelative(rule Rule) {
	if !filepath.IsAbs(rule.Path()) {
		a.logger.Warn("relative paths aren't expected to work", "rule", rule.String())
	}
}

// ancestorChain returns path exactly as given followed by each parent up
// to and including the root, nearest first. Parents are found by dropping
// the last component as text, never by cleaning, so ".." and symlinks are
// left for the kernel to resolve. Relative paths end at "", which no probe
// can resolve.
func ancestorChain(path string) []string {
	chain := []string{path}
	current := path
	for {
		trimmed := strings.TrimRight(current, "/")
		if trimmed == "" {
			return chain
		}

		parent := ""
		if index := strings.LastIndex(trimmed, "/"); index >= 0 {
			parent = strings.TrimRight(trimmed[:index], "/")
			if parent == "" {
				parent = "/"
			}
		}
		chain = append(chain, parent)
		current = parent
	}
}
