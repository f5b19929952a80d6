// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode selects when severity tags are colored.
type ColorMode string

const (
	// ColorAlways colors with a 256-color profile.
	ColorAlways ColorMode = "always"

	// ColorANSI colors with the 16 basic ANSI colors only.
	ColorANSI ColorMode = "ansi"

	// ColorAuto colors when the output is a terminal, honoring NO_COLOR
	// and CLICOLOR_FORCE.
	ColorAuto ColorMode = "auto"

	// ColorNever never colors.
	ColorNever ColorMode = "never"
)

// ParseColorMode validates a --color value.
func ParseColorMode(value string) (ColorMode, error) {
	switch mode := ColorMode(value); mode {
	case ColorAlways, ColorANSI, ColorAuto, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color choice %q: valid choices are always, ansi, auto and never", value)
	}
}

// Profile resolves the mode to a termenv color profile for w. Only
// ColorAuto looks at w.
func (m ColorMode) Profile(w io.Writer) termenv.Profile {
	switch m {
	case ColorAlways:
		return termenv.ANSI256
	case ColorANSI:
		return termenv.ANSI
	case ColorAuto:
		file, ok := w.(interface{ Fd() uintptr })
		if !ok || !term.IsTerminal(int(file.Fd())) {
			return termenv.Ascii
		}
		return termenv.NewOutput(w).EnvColorProfile()
	default:
		return termenv.Ascii
	}
}

// Renderer styles severity tags: green for compliant, yellow for MAYBE,
// red for violations, bold for the major severities.
type Renderer struct {
	profile termenv.Profile
	styles  map[Severity]lipgloss.Style
}

// NewRenderer builds a renderer for w. The profile is resolved once here.
func NewRenderer(w io.Writer, mode ColorMode) *Renderer {
	profile := mode.Profile(w)

	// SetColorProfile pins the profile; without it lipgloss re-detects
	// from the environment and ignores the termenv option.
	base := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	base.SetColorProfile(profile)

	green := lipgloss.Color("2")
	yellow := lipgloss.Color("3")
	red := lipgloss.Color("1")

	return &Renderer{
		profile: profile,
		styles: map[Severity]lipgloss.Style{
			SeverityGreat: base.NewStyle().Foreground(green).Bold(true),
			SeverityGood:  base.NewStyle().Foreground(green),
			SeverityMaybe: base.NewStyle().Foreground(yellow),
			SeverityUgly:  base.NewStyle().Foreground(red),
			SeverityBad:   base.NewStyle().Foreground(red).Bold(true),
		},
	}
}

// PlainRenderer never emits escape sequences.
func PlainRenderer() *Renderer {
	return &Renderer{profile: termenv.Ascii}
}

// Colored reports whether tags carry escape sequences.
func (r *Renderer) Colored() bool {
	return r.profile != termenv.Ascii
}

// Tag renders "SEVERITY:".
func (r *Renderer) Tag(severity Severity) string {
	tag := severity.String() + ":"
	if !r.Colored() {
		return tag
	}
	style, ok := r.styles[severity]
	if !ok {
		return tag
	}
	return style.Render(tag)
}
