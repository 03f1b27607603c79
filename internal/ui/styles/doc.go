// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ragdesk TUI.

# Color System (colors.go)

All colors use Lip Gloss AdaptiveColor so they follow the terminal's light
or dark background automatically.

  - Purple - Primary accent, assistant messages, focused panes
  - Cyan - Brand color, user messages, citation markers
  - Emerald - Success states
  - Amber - Work in progress
  - Rose - Errors and failed answers

# Theme (theme.go)

Theme bundles the lipgloss styles used by the TUI panes, buttons, message
labels and status line. NewTheme detects the background with termenv; the
"ui.theme" setting can force dark or light.

	theme := styles.NewTheme("auto")
	title := theme.HeaderTitle.Render("ragdesk")
*/
package styles
