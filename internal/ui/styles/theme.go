// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the TUI.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderHint  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style

	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	PendingText    lipgloss.Style
	FailedText     lipgloss.Style
	Placeholder    lipgloss.Style

	StatusBar lipgloss.Style
	Help      lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light", or "auto" to detect
// the terminal background.
func NewTheme(mode string) *Theme {
	t := &Theme{ColorProfile: termenv.ColorProfile()}
	switch strings.ToLower(mode) {
	case "dark":
		t.IsDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		t.IsDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		t.IsDark = termenv.HasDarkBackground()
	}
	t.initStyles()
	return t
}

// GlamourStyle returns the markdown style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// ResolveGlamourStyle returns configured unless it is empty or "auto".
func (t *Theme) ResolveGlamourStyle(configured string) string {
	if configured == "" || strings.EqualFold(configured, "auto") {
		return t.GlamourStyle()
	}
	return configured
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.HeaderHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PaneFocused = t.Pane.
		BorderForeground(Purple)
	t.PaneTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2)
	t.ButtonFocused = t.Button.
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)
	t.ButtonDisabled = t.Button.
		Foreground(TextMuted).
		Background(OverlayDim).
		Faint(true)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.PendingText = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)
	t.FailedText = lipgloss.NewStyle().
		Foreground(Rose)
	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)
}
