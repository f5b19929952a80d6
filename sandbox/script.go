// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"

	"github.com/zeebo/blake3"
)

// maxLineLength bounds a single script line.
const maxLineLength = 1 << 20

// scriptScanner yields the rule lines of a script: blank lines and lines
// starting with "#" are skipped. Every byte read is hashed.
type scriptScanner struct {
	scanner *bufio.Scanner
	hasher  *blake3.Hasher
	number  int
	line    string
}

func newScriptScanner(script io.Reader) *scriptScanner {
	hasher := blake3.New()
	scanner := bufio.NewScanner(io.TeeReader(script, hasher))
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	return &scriptScanner{scanner: scanner, hasher: hasher}
}

// Next advances to the next rule line.
func (s *scriptScanner) Next() bool {
	for s.scanner.Scan() {
		s.number++
		line := s.scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.line = line
		return true
	}
	return false
}

// Line returns the current rule line and its 1-based number in the script.
func (s *scriptScanner) Line() (int, string) {
	return s.number, s.line
}

func (s *scriptScanner) Err() error {
	return s.scanner.Err()
}

// Digest returns the BLAKE3 hex digest of the bytes consumed so far.
func (s *scriptScanner) Digest() string {
	return hex.EncodeToString(s.hasher.Sum(nil))
}

// ScriptLine is one rule line of a script with its parse outcome.
type ScriptLine struct {
	Number int    `json:"line"`
	Text   string `json:"text"`

	// Rule is the parsed rule. It is the zero Rule when Error is set.
	Rule Rule `json:"-"`

	// Normalized is Rule in script syntax with "~/" expanded.
	Normalized string `json:"rule,omitempty"`
	Weight     int    `json:"weight"`

	// Error is the parse error message of an invalid line.
	Error string `json:"error,omitempty"`
}

// LintResult is a parsed script that has not been checked.
type LintResult struct {
	Rules   []ScriptLine `json:"rules"`
	Invalid []ScriptLine `json:"invalid"`

	// MaxScore is the score of a sandbox that passes every rule.
	MaxScore int `json:"max_score"`

	Digest string `json:"digest"`
}

// Lint parses every rule line of script without probing anything. A read
// error is returned with the lines gathered so far.
func Lint(script io.Reader, home Home) (LintResult, error) {
	scanner := newScriptScanner(script)
	result := LintResult{Rules: []ScriptLine{}, Invalid: []ScriptLine{}}

	for scanner.Next() {
		number, text := scanner.Line()
		rule, err := ParseRule(text, home)
		if err != nil {
			result.Invalid = append(result.Invalid, ScriptLine{Number: number, Text: text, Error: err.Error()})
			continue
		}
		result.Rules = append(result.Rules, ScriptLine{
			Number:     number,
			Text:       text,
			Rule:       rule,
			Normalized: rule.String(),
			Weight:     rule.Class().Weight(),
		})
		result.MaxScore += rule.Class().Weight()
	}

	result.Digest = scanner.Digest()
	return result, scanner.Err()
}
