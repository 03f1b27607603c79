// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styles for CLI output.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)

	// SectionStyle is used for section headers within commands
	SectionStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary).MarginTop(1)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(28)

	// ValueStyle is used for regular values
	ValueStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)

	// ErrorStyle is used for error messages
	ErrorStyle = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)

	// DimStyle is used for hints and secondary information
	DimStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)

	// PromptStyle is the chat REPL prompt
	PromptStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
)

// Separator returns a horizontal rule of width w.
func Separator(w int) string {
	return DimStyle.Render(strings.Repeat("=", w))
}
