// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox verifies, from inside a sandboxed process, that the
// restrictions a sandbox is supposed to impose actually hold.
//
// Expectations are written in a small line-oriented rule script:
//
//	# comment
//	caps
//	newprivs
//	print Checking SSH keys
//	read ~/.ssh
//	write /etc
//
// [ParseRule] turns one line into a [Rule]. Tilde expansion happens once,
// at parse time, against a [Home] resolved during setup. The parser has no
// notion of comments; [Run] drops blank and "#" lines before parsing.
//
// [Auditor] executes rules against the live process through a [Prober]
// ([SystemProber] in production, fakes in tests) and emits one [Verdict]
// per resolved rule to a [Sink]. Every rule kind has a fixed [Class]:
// capability rules are major (weight 2, GREAT or BAD), path rules are minor
// (weight 1, GOOD or UGLY), and "print" carries no weight. The auditor adds
// the weight to [Score.Max] when a check starts and to [Score.Lost] only for
// non-compliant verdicts, so the final score is Max-Lost and never negative.
//
// Probe errors other than the handled errno values are logged and produce
// no verdict, which leaves the weight counted in Max without a matching
// penalty. Failure to read the capability bounding set is an
// [EnvironmentError] and aborts the run.
//
// Verdicts reach a [TextSink] for people, a [Report] for machines, or both
// through [Tee]. [Lint] parses a script without probing anything.
//
// The package observes the sandbox; it never configures or enforces one.
// Wrappers such as bubblewrap, Landlock or firejail do that, and
// bureau-audit is run inside them.
package sandbox
