// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/export"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()

	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			m.cancel()
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ResetDoneMsg:
		_ = m.reset.Settle(msg.Outcome)

	case IngestDoneMsg:
		_ = msg.Pending.Settle(msg.Outcome)

	case ChatDoneMsg:
		_, _ = msg.Pending.Settle(msg.Outcome)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.notice = "Export failed: " + msg.Err.Error()
			log.Printf("EXPORT_ERROR | err=%v", msg.Err)
		} else {
			m.notice = "Exported to " + msg.Path
			log.Printf("EXPORT_COMPLETE | path=%s", msg.Path)
		}

	default:
		cmds = append(cmds, m.updateFocused(msg))
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press. quit is true when the program should exit.
func (m *Model) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, quit bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true

	case key.Matches(msg, m.keys.NextFocus):
		return m.setFocus(m.focus + 1), false

	case key.Matches(msg, m.keys.PrevFocus):
		return m.setFocus(m.focus - 1), false

	case key.Matches(msg, m.keys.Ingest):
		return m.submitIngest(), false

	case key.Matches(msg, m.keys.Export):
		return m.exportTranscript(), false

	case key.Matches(msg, m.keys.PageUp):
		m.chatView.HalfViewUp()
		return nil, false

	case key.Matches(msg, m.keys.PageDown):
		m.chatView.HalfViewDown()
		return nil, false
	}

	switch m.focus {
	case focusQuestion:
		if key.Matches(msg, m.keys.Submit) {
			return m.submitChat(), false
		}
	case focusSendButton:
		if key.Matches(msg, m.keys.Submit, m.keys.Press) {
			return m.submitChat(), false
		}
		return nil, false
	case focusIngestButton:
		if key.Matches(msg, m.keys.Submit, m.keys.Press) {
			return m.submitIngest(), false
		}
		return nil, false
	}

	m.notice = ""
	return m.updateFocused(msg), false
}

// updateFocused forwards msg to the focused input.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusCorpus:
		m.corpus, cmd = m.corpus.Update(msg)
	case focusQuestion:
		m.question, cmd = m.question.Update(msg)
	}
	return cmd
}

// =============================================================================
// COMMANDS
// =============================================================================

// startReset shows the reset as running and returns the command that
// performs it.
func (m *Model) startReset() tea.Cmd {
	m.reset.Begin()
	reset, ctx := m.reset, m.ctx
	return func() tea.Msg {
		return ResetDoneMsg{Outcome: reset.Run(ctx)}
	}
}

// submitIngest is the single entry point for the Ingest button and Ctrl+S.
func (m *Model) submitIngest() tea.Cmd {
	pending, err := m.ingestion.Begin(m.corpus.Value())
	if err != nil {
		var ve *controller.ValidationError
		if errors.As(err, &ve) {
			m.notice = ve.Message
		}
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return IngestDoneMsg{Pending: pending, Outcome: pending.Run(ctx)}
	}
}

// submitChat is the single entry point for Enter and the Send button.
func (m *Model) submitChat() tea.Cmd {
	pending, err := m.chat.Submit(m.question.Value())
	if err != nil {
		return nil
	}
	m.notice = ""
	ctx := m.ctx
	return func() tea.Msg {
		return ChatDoneMsg{Pending: pending, Outcome: pending.Run(ctx)}
	}
}

// exportTranscript writes the session to the export directory.
func (m *Model) exportTranscript() tea.Cmd {
	transcript := export.FromState(m.store.ID(), m.store.StartTime(), m.store.Snapshot())
	dir, err := m.cfg.ExportDir()
	if err != nil {
		return func() tea.Msg { return ExportDoneMsg{Err: err} }
	}
	m.notice = fmt.Sprintf("Exporting to %s...", dir)
	return func() tea.Msg {
		path, err := export.ExportToFile(transcript, export.NewMarkdownExporter(nil), &export.Options{
			OutputDir:         dir,
			IncludeMetadata:   true,
			IncludeTimestamps: true,
		})
		return ExportDoneMsg{Path: path, Err: err}
	}
}
