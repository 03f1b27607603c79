// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package status publishes short human-readable status lines into named
// regions (reset, ingest, chat). Sinks decide where the lines end up: the
// session store for the TUI, a terminal writer for the CLI, the log file.
package status

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// Region names a status display area.
type Region string

const (
	RegionReset  Region = "reset"
	RegionIngest Region = "ingest"
	RegionChat   Region = "chat"
)

// Regions lists every region in display order.
var Regions = []Region{RegionReset, RegionIngest, RegionChat}

// Reporter publishes a status line to a region. A later report for the same
// region replaces the earlier one.
type Reporter interface {
	Report(region Region, message string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(region Region, message string)

// Report calls f.
func (f ReporterFunc) Report(region Region, message string) {
	f(region, message)
}

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(Region, string) {})

// =============================================================================
// LEVELS
// =============================================================================

// Level is the visual weight of a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelBusy
	LevelSuccess
	LevelError
)

// LevelOf infers the level of a status message from its wording.
func LevelOf(message string) Level {
	lower := strings.ToLower(message)
	switch {
	case strings.HasPrefix(lower, "error"),
		strings.HasPrefix(lower, "connection error"),
		strings.Contains(lower, "failed"):
		return LevelError
	case strings.HasPrefix(lower, "success"),
		strings.Contains(lower, "ready"),
		strings.HasPrefix(lower, "answered"):
		return LevelSuccess
	case strings.HasSuffix(message, "..."):
		return LevelBusy
	default:
		return LevelInfo
	}
}

// Style returns the lipgloss style for a level.
func (l Level) Style() lipgloss.Style {
	switch l {
	case LevelError:
		return lipgloss.NewStyle().Foreground(styles.Rose)
	case LevelSuccess:
		return lipgloss.NewStyle().Foreground(styles.Emerald)
	case LevelBusy:
		return lipgloss.NewStyle().Foreground(styles.Amber)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextSecondary)
	}
}

// =============================================================================
// SINKS
// =============================================================================

// Writer prints "[region] message" lines, colored when styled is true.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool
}

// NewWriter creates a Writer sink.
func NewWriter(out io.Writer, styled bool) *Writer {
	return &Writer{out: out, styled: styled}
}

// Report writes one line.
func (w *Writer) Report(region Region, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	label := fmt.Sprintf("[%s]", region)
	if w.styled {
		label = lipgloss.NewStyle().Foreground(styles.TextMuted).Render(label)
		message = LevelOf(message).Style().Render(message)
	}
	fmt.Fprintf(w.out, "%s %s\n", label, message)
}

// Logged writes every report to a logger before passing it on.
type Logged struct {
	Next   Reporter
	Logger *log.Logger
}

// Report logs and delegates.
func (l Logged) Report(region Region, message string) {
	if l.Logger != nil {
		l.Logger.Printf("STATUS | region=%s msg=%q", region, message)
	} else {
		log.Printf("STATUS | region=%s msg=%q", region, message)
	}
	if l.Next != nil {
		l.Next.Report(region, message)
	}
}

// Multi fans a report out to every non-nil reporter in order.
func Multi(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return ReporterFunc(func(region Region, message string) {
		for _, r := range rs {
			r.Report(region, message)
		}
	})
}
