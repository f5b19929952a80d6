// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"strings"
)

// Kind identifies one of the fixed rule variants.
type Kind uint8

const (
	// KindCapabilities asserts that the capability bounding set is empty.
	KindCapabilities Kind = iota + 1

	// KindNoNewPrivileges asserts that the no_new_privs flag is set.
	KindNoNewPrivileges

	// KindAnnounce prints its text verbatim and never affects the score.
	KindAnnounce

	// KindDenyRead asserts that a path cannot be read.
	KindDenyRead

	// KindDenyWrite asserts that a path cannot be written or created.
	KindDenyWrite
)

// Class is the weight class of a rule kind. The numeric value is the
// weight added to Score.Max per check and to Score.Lost per violation.
type Class uint8

const (
	// ClassNone is used by rules that are never scored.
	ClassNone Class = 0

	// ClassMinor rules report GOOD or UGLY.
	ClassMinor Class = 1

	// ClassMajor rules report GREAT or BAD.
	ClassMajor Class = 2
)

// Weight returns the score weight of the class.
func (c Class) Weight() int {
	return int(c)
}

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassMinor:
		return "minor"
	case ClassMajor:
		return "major"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// kindSpec pairs each kind with its script keyword and weight class.
// A keyword with a trailing space takes the rest of the line as its
// argument; the others must match the whole line.
type kindSpec struct {
	keyword string
	class   Class
}

var kindSpecs = [...]kindSpec{
	KindCapabilities:    {keyword: "caps", class: ClassMajor},
	KindNoNewPrivileges: {keyword: "newprivs", class: ClassMajor},
	KindAnnounce:        {keyword: "print ", class: ClassNone},
	KindDenyRead:        {keyword: "read ", class: ClassMinor},
	KindDenyWrite:       {keyword: "write ", class: ClassMinor},
}

func (k Kind) valid() bool {
	return k >= KindCapabilities && int(k) < len(kindSpecs)
}

// Class returns the fixed weight class of the kind.
func (k Kind) Class() Class {
	if !k.valid() {
		return ClassNone
	}
	return kindSpecs[k].class
}

// Keyword returns the script keyword without a trailing separator.
func (k Kind) Keyword() string {
	if !k.valid() {
		return ""
	}
	return strings.TrimSuffix(kindSpecs[k].keyword, " ")
}

// TakesArgument reports whether the kind carries a path or text argument.
func (k Kind) TakesArgument() bool {
	return k.valid() && strings.HasSuffix(kindSpecs[k].keyword, " ")
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return k.Keyword()
}

// Rule is one parsed line of a rule script. Rules are values and cannot
// be modified after construction.
type Rule struct {
	kind     Kind
	argument string
}

// CapabilitiesRule returns the "caps" rule.
func CapabilitiesRule() Rule {
	return Rule{kind: KindCapabilities}
}

// NoNewPrivilegesRule returns the "newprivs" rule.
func NoNewPrivilegesRule() Rule {
	return Rule{kind: KindNoNewPrivileges}
}

// AnnounceRule returns a "print" rule carrying text verbatim.
func AnnounceRule(text string) Rule {
	return Rule{kind: KindAnnounce, argument: text}
}

// DenyReadRule returns a "read" rule for an already expanded path.
func DenyReadRule(path string) Rule {
	return Rule{kind: KindDenyRead, argument: path}
}

// DenyWriteRule returns a "write" rule for an already expanded path.
func DenyWriteRule(path string) Rule {
	return Rule{kind: KindDenyWrite, argument: path}
}

// Kind returns the rule variant.
func (r Rule) Kind() Kind {
	return r.kind
}

// Class returns the weight class of the rule's kind.
func (r Rule) Class() Class {
	return r.kind.Class()
}

// Path returns the target path of a read or write rule, and "" otherwise.
func (r Rule) Path() string {
	if r.kind != KindDenyRead && r.kind != KindDenyWrite {
		return ""
	}
	return r.argument
}

// Text returns the message of a print rule, and "" otherwise.
func (r Rule) Text() string {
	if r.kind != KindAnnounce {
		return ""
	}
	return r.argument
}

// String renders the rule in script syntax. Paths are shown expanded.
func (r Rule) String() string {
	if r.kind.TakesArgument() {
		return r.kind.Keyword() + " " + r.argument
	}
	return r.kind.String()
}

// MarshalText encodes the rule in script syntax for JSON and CBOR reports.
func (r Rule) MarshalText() ([]byte, error) {
	if !r.kind.valid() {
		return nil, fmt.Errorf("cannot marshal rule of unknown %s", r.kind)
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rule written by MarshalText. The text is parsed
// without tilde expansion since marshaled paths are already expanded.
func (r *Rule) UnmarshalText(text []byte) error {
	rule, err := ParseRule(string(text), Home{})
	if err != nil {
		return err
	}
	*r = rule
	return nil
}

// ParseError reports a script line that does not match any rule.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return "invalid rule: " + e.Line
}

// ParseRule converts one script line into a Rule. Keywords without an
// argument must match the whole line. Keywords with an argument are
// followed by exactly one space, and the argument runs verbatim to the end
// of the line. Read and write paths are expanded through home.
//
// Lines that match nothing return a *ParseError. Comment and blank-line
// filtering is the caller's job.
func ParseRule(line string, home Home) (Rule, error) {
	switch line {
	case kindSpecs[KindCapabilities].keyword:
		return CapabilitiesRule(), nil
	case kindSpecs[KindNoNewPrivileges].keyword:
		return NoNewPrivilegesRule(), nil
	}

	if text, ok := strings.CutPrefix(line, kindSpecs[KindAnnounce].keyword); ok {
		return AnnounceRule(text), nil
	}
	if path, ok := strings.CutPrefix(line, kindSpecs[KindDenyRead].keyword); ok {
		return DenyReadRule(home.Expand(path)), nil
	}
	if path, ok := strings.CutPrefix(line, kindSpecs[KindDenyWrite].keyword); ok {
		return DenyWriteRule(home.Expand(path)), nil
	}

	return Rule{}, &ParseError{Line: line}
}
