// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/session"
	"github.com/jeranaias/ragdesk/internal/status"
	"github.com/jeranaias/ragdesk/internal/util"
)

const (
	ingestLabel = "Ingest"
	sendLabel   = "Send"

	// pane border (2) plus horizontal padding (2)
	paneChromeWidth  = 4
	paneChromeHeight = 2

	minWidth  = 60
	minHeight = 16
)

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes every widget from the window size.
func (m *Model) layout() {
	bodyHeight := m.height - 3 // header, status bar, help
	leftWidth := m.width * 2 / 5
	rightWidth := m.width - leftWidth

	leftInner := max(leftWidth-paneChromeWidth, 10)
	rightInner := max(rightWidth-paneChromeWidth, 10)
	innerHeight := max(bodyHeight-paneChromeHeight, 6)

	corpusHeight := max(innerHeight/3, 3)
	m.corpus.SetWidth(leftInner)
	m.corpus.SetHeight(corpusHeight)

	m.kbView.Width = leftInner
	m.kbView.Height = max(innerHeight-corpusHeight-3, 1)

	m.chatView.Width = rightInner
	m.chatView.Height = max(innerHeight-2, 1)

	m.question.Width = max(rightInner-lipgloss.Width(m.button(sendLabel, false, false))-len(m.question.Prompt)-2, 5)

	m.renderer.SetWordWrap(rightInner)
	m.follow = true
	m.refresh()
}

// refresh projects the session state into the viewports.
func (m *Model) refresh() {
	state := m.store.Snapshot()
	if state.Version != m.version || m.follow {
		m.chatView.SetContent(m.chatLog(state))
		m.kbView.SetContent(m.knowledge(state))
		if state.Version != m.version {
			m.kbView.GotoBottom()
		}
		m.version = state.Version
	} else if state.ChatInFlight {
		// keep the spinner in the pending placeholder moving
		m.chatView.SetContent(m.chatLog(state))
	}
	if m.follow {
		m.chatView.GotoBottom()
		m.follow = false
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.width < minWidth || m.height < minHeight {
		return fmt.Sprintf("Window too small (%dx%d). Need at least %dx%d.",
			m.width, m.height, minWidth, minHeight)
	}

	state := m.store.Snapshot()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.knowledgePane(state),
		m.chatPane(state),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		body,
		m.statusBar(state),
		m.helpLine(),
	)
}

func (m *Model) header() string {
	title := m.theme.HeaderTitle.Render("ragdesk")
	info := fmt.Sprintf("  %s  session %s", m.backendURL, shortID(m.store.ID()))
	line := title + m.theme.HeaderHint.Render(info)
	return m.theme.Header.Width(m.width).Render(util.TruncateWidth(line, m.width))
}

func (m *Model) knowledgePane(state session.State) string {
	width := m.width * 2 / 5
	pane := m.theme.Pane
	if m.focus == focusCorpus || m.focus == focusIngestButton {
		pane = m.theme.PaneFocused
	}

	ingestBtn := m.button(ingestLabel, m.focus == focusIngestButton, state.IngestInFlight)
	if state.IngestInFlight {
		ingestBtn += " " + m.spinner.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.PaneTitle.Render("Teach"),
		m.corpus.View(),
		ingestBtn,
		m.theme.PaneTitle.Render("Knowledge Base"),
		m.kbView.View(),
	)
	return pane.Width(width - 2).Render(content)
}

func (m *Model) chatPane(state session.State) string {
	width := m.width - m.width*2/5
	pane := m.theme.Pane
	if m.focus == focusQuestion || m.focus == focusSendButton {
		pane = m.theme.PaneFocused
	}

	sendBtn := m.button(sendLabel, m.focus == focusSendButton, state.ChatInFlight)
	inputRow := lipgloss.JoinHorizontal(lipgloss.Center, m.question.View(), " ", sendBtn)

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.PaneTitle.Render("Ask"),
		m.chatView.View(),
		inputRow,
	)
	return pane.Width(width - 2).Render(content)
}

// button renders a push button; disabled buttons are dimmed.
func (m *Model) button(label string, focused, disabled bool) string {
	switch {
	case disabled:
		return m.theme.ButtonDisabled.Render(label)
	case focused:
		return m.theme.ButtonFocused.Render(label)
	default:
		return m.theme.Button.Render(label)
	}
}

func (m *Model) statusBar(state session.State) string {
	per := max(m.width/len(status.Regions)-2, 8)
	var parts []string
	for _, region := range status.Regions {
		msg := state.Status(region)
		if msg == "" {
			msg = "-"
		}
		level := status.LevelOf(msg)
		text := util.TruncateWidth(msg, per-len(region)-3)
		if level == status.LevelBusy {
			text = m.spinner.View() + text
		}
		parts = append(parts, m.theme.Help.Render(string(region)+": ")+level.Style().Render(text))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m *Model) helpLine() string {
	line := m.keys.HelpText()
	if m.notice != "" {
		line = m.notice
	}
	return m.theme.Help.Render(util.TruncateWidth(line, m.width))
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// chatLog renders the chat log in order.
func (m *Model) chatLog(state session.State) string {
	msgs := state.Messages()
	if len(msgs) == 0 {
		return m.theme.Placeholder.Render("No questions yet. Type one below and press Enter.")
	}

	width := max(m.chatView.Width, 10)
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.messageHeader(msg))
		b.WriteString("\n")
		switch {
		case msg.Role == model.RoleUser:
			b.WriteString(body.Render(msg.Text))
		case msg.IsPending():
			b.WriteString(m.spinner.View() + m.theme.PendingText.Render(msg.Text))
		case msg.Status == model.StatusFailed:
			b.WriteString(m.theme.FailedText.Width(width).Render(msg.Text))
		default:
			b.WriteString(msg.Text)
		}
	}
	return b.String()
}

func (m *Model) messageHeader(msg model.ChatMessage) string {
	label := m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
	}
	meta := msg.Timestamp.Format("15:04:05")
	if msg.Status == model.StatusComplete && msg.TimeTaken > 0 {
		meta += fmt.Sprintf(" (%.2fs)", msg.TimeTaken)
	}
	return label + " " + m.theme.Timestamp.Render(meta)
}

// knowledge renders the knowledge base preview.
func (m *Model) knowledge(state session.State) string {
	entries := state.Knowledge()
	text := session.KnowledgeView(entries)
	width := max(m.kbView.Width, 10)
	if len(entries) == 0 {
		return m.theme.Placeholder.Width(width).Render(text)
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
