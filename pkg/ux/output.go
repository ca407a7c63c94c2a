// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the sfcdiff CLI.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights
	ColorTealPrimary = lipgloss.Color("#20B9B4") // main accent
	ColorTealDeep    = lipgloss.Color("#16858E") // borders
	ColorSlate       = lipgloss.Color("#2C4A54") // muted text

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorAdded   = lipgloss.Color("#58D68D")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title    lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Added    lipgloss.Style
	Removed  lipgloss.Style
	Hunk     lipgloss.Style
	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Added:   lipgloss.NewStyle().Foreground(ColorAdded),
	Removed: lipgloss.NewStyle().Foreground(ColorError),
	Hunk:    lipgloss.NewStyle().Foreground(ColorTealPrimary),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconKeep  Icon = "✓"
	IconDrop  Icon = "→"
	IconLeft  Icon = "⚠"
	IconError Icon = "✗"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	if !ShouldShowColors() {
		return string(i)
	}
	switch i {
	case IconKeep:
		return Styles.Success.Render(string(i))
	case IconDrop:
		return Styles.Title.Render(string(i))
	case IconLeft:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// IconFor maps a merge action name to its icon.
func IconFor(action string) Icon {
	switch action {
	case "keep":
		return IconKeep
	case "drop":
		return IconDrop
	case "left":
		return IconLeft
	default:
		return IconError
	}
}

// Printer writes styled output to a single writer.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !ShouldShowColors() {
		return text
	}
	return s.Render(text)
}

// Title prints a styled title
func (p *Printer) Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(p.w, p.render(Styles.Title, text))
}

// Region prints one classified region.
func (p *Printer) Region(name, action, reason string) {
	icon := IconFor(action)
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(p.w, "%s\t%s\t%s\n", name, action, reason)
	case PersonalityMinimal:
		fmt.Fprintf(p.w, "%s %s %s\n", icon.Render(), name, action)
	default:
		fmt.Fprintf(p.w, "%s %s %s %s\n", icon.Render(),
			p.render(Styles.Bold, name),
			p.render(Styles.Title, action),
			p.render(Styles.Muted, "("+reason+")"))
	}
}

// DiffStat prints line counts of a region diff.
func (p *Printer) DiffStat(added, changed, deleted int) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(p.w, "DIFF: added=%d changed=%d deleted=%d\n", added, changed, deleted)
	default:
		fmt.Fprintf(p.w, "  %s %s %s\n",
			p.render(Styles.Added, fmt.Sprintf("+%d", added)),
			p.render(Styles.Warning, fmt.Sprintf("~%d", changed)),
			p.render(Styles.Removed, fmt.Sprintf("-%d", deleted)))
	}
}

// Diff prints a unified diff, coloring added and removed lines.
func (p *Printer) Diff(unified string) {
	if !GetPersonality().ShowDiff || GetPersonality().Level == PersonalityMachine {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = p.render(Styles.Bold, line)
		case strings.HasPrefix(line, "@@"):
			line = p.render(Styles.Hunk, line)
		case strings.HasPrefix(line, "+"):
			line = p.render(Styles.Added, line)
		case strings.HasPrefix(line, "-"):
			line = p.render(Styles.Removed, line)
		}
		fmt.Fprintln(p.w, "    "+line)
	}
}

// Summary prints a summary line with counts
func (p *Printer) Summary(kept, dropped, left int) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(p.w, "SUMMARY: keep=%d drop=%d left=%d\n", kept, dropped, left)
	default:
		fmt.Fprintf(p.w, "\n%s %s  %s %s  %s %s\n",
			p.render(Styles.Success, fmt.Sprintf("%d", kept)), p.render(Styles.Muted, "keep"),
			p.render(Styles.Title, fmt.Sprintf("%d", dropped)), p.render(Styles.Muted, "drop"),
			p.render(Styles.Warning, fmt.Sprintf("%d", left)), p.render(Styles.Muted, "left"),
		)
	}
}

// Error prints an error message
func (p *Printer) Error(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(p.w, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(p.w, "%s %s\n", IconError.Render(), text)
	default:
		fmt.Fprintln(p.w, Styles.ErrorBox.Width(60).Render(p.render(Styles.Error, text)))
	}
}

// Box prints text in a rounded box
func (p *Printer) Box(title, content string) {
	if GetPersonality().Level != PersonalityFull {
		fmt.Fprintf(p.w, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, Styles.Box.Width(60).Render(Styles.Title.Render(title)+"\n"+content))
}
