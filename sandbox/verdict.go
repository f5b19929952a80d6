// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import "fmt"

// Severity labels a verdict. GREAT and GOOD are compliant, UGLY and BAD
// are violations, MAYBE is informational.
type Severity uint8

const (
	SeverityGreat Severity = iota + 1
	SeverityGood
	SeverityMaybe
	SeverityUgly
	SeverityBad
)

var severityNames = [...]string{
	SeverityGreat: "GREAT",
	SeverityGood:  "GOOD",
	SeverityMaybe: "MAYBE",
	SeverityUgly:  "UGLY",
	SeverityBad:   "BAD",
}

func (s Severity) String() string {
	if s < SeverityGreat || int(s) >= len(severityNames) {
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
	return severityNames[s]
}

// Compliant reports whether the severity means the restriction holds.
func (s Severity) Compliant() bool {
	return s == SeverityGreat || s == SeverityGood
}

// MarshalText encodes the severity as its tag name.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityGreat || int(s) >= len(severityNames) {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return []byte(severityNames[s]), nil
}

// UnmarshalText decodes a tag name produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	for candidate := SeverityGreat; int(candidate) < len(severityNames); candidate++ {
		if severityNames[candidate] == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// severityFor maps a class and an outcome to the only severity that class
// may report. Major rules say GREAT or BAD, minor rules GOOD or UGLY.
func severityFor(class Class, compliant bool) Severity {
	switch {
	case class == ClassMajor && compliant:
		return SeverityGreat
	case class == ClassMajor:
		return SeverityBad
	case compliant:
		return SeverityGood
	default:
		return SeverityUgly
	}
}

// Verdict is the outcome of checking one rule.
type Verdict struct {
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Compliant reports whether the rule's restriction holds.
func (v Verdict) Compliant() bool {
	return v.Severity.Compliant()
}

// Score accumulates rule weights over one run.
type Score struct {
	// Max is the sum of the weights of every rule checked so far.
	Max int `json:"max"`

	// Lost is the sum of the weights of every violation so far.
	Lost int `json:"lost"`
}

// Result returns the achieved score, Max-Lost.
func (s Score) Result() int {
	return s.Max - s.Lost
}

// Summary returns the closing line of a text report.
func (s Score) Summary() string {
	return fmt.Sprintf("Your score: %d out of %d.", s.Result(), s.Max)
}

func (s *Score) expect(class Class) {
	s.Max += class.Weight()
}

func (s *Score) penalize(class Class) {
	s.Lost += class.Weight()
}
