// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"io"
)

// Sink receives the results of an audit run as they happen.
type Sink interface {
	// Verdict is called once per resolved rule.
	Verdict(verdict Verdict)

	// Announce is called for every "print" rule.
	Announce(text string)
}

// TextSink writes the human-readable report: one "SEVERITY: message" line
// per verdict and print text verbatim.
type TextSink struct {
	writer   io.Writer
	renderer *Renderer
}

// NewTextSink returns a TextSink writing to w with tags styled by renderer.
// A nil renderer produces plain tags.
func NewTextSink(w io.Writer, renderer *Renderer) *TextSink {
	if renderer == nil {
		renderer = PlainRenderer()
	}
	return &TextSink{writer: w, renderer: renderer}
}

func (s *TextSink) Verdict(verdict Verdict) {
	fmt.Fprintf(s.writer, "%s %s\n", s.renderer.Tag(verdict.Severity), verdict.Message)
}

func (s *TextSink) Announce(text string) {
	fmt.Fprintln(s.writer, text)
}

// Summary writes the closing score line.
func (s *TextSink) Summary(score Score) {
	fmt.Fprintln(s.writer, score.Summary())
}

// ScriptSummary describes one rule script consumed by a run.
type ScriptSummary struct {
	Name    string `json:"name"`
	Digest  string `json:"digest"`
	Checked int    `json:"checked"`
	Invalid int    `json:"invalid"`
}

// Report collects a whole run for machine-readable output. Several
// scripts may feed one report; their verdicts and score accumulate.
type Report struct {
	Tool          string          `json:"tool"`
	Version       string          `json:"version"`
	Scripts       []ScriptSummary `json:"scripts"`
	Verdicts      []Verdict       `json:"verdicts"`
	Announcements []string        `json:"announcements"`
	Unresolved    int             `json:"unresolved"`
	Score         Score           `json:"score"`
	Result        int             `json:"result"`
}

func (r *Report) Verdict(verdict Verdict) {
	r.Verdicts = append(r.Verdicts, verdict)
}

func (r *Report) Announce(text string) {
	r.Announcements = append(r.Announcements, text)
}

// Record adds the outcome of running the script called name. The score in
// result is the auditor's running total, so the last call wins. Unresolved
// counts scored rules that ended without a verdict.
func (r *Report) Record(name string, result RunResult) {
	r.Scripts = append(r.Scripts, ScriptSummary{
		Name:    name,
		Digest:  result.ScriptDigest,
		Checked: result.Checked,
		Invalid: result.Invalid,
	})
	r.Score = result.Score
	r.Result = result.Score.Result()

	checked := 0
	for _, script := range r.Scripts {
		checked += script.Checked
	}
	r.Unresolved = checked - len(r.Verdicts)

	if r.Verdicts == nil {
		r.Verdicts = []Verdict{}
	}
	if r.Announcements == nil {
		r.Announcements = []string{}
	}
}

type teeSink []Sink

// Tee returns a Sink that forwards to every sink in order.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

func (t teeSink) Verdict(verdict Verdict) {
	for _, sink := range t {
		sink.Verdict(verdict)
	}
}

func (t teeSink) Announce(text string) {
	for _, sink := range t {
		sink.Announce(text)
	}
}
