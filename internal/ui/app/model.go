// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/render"
	"github.com/jeranaias/ragdesk/internal/session"
	"github.com/jeranaias/ragdesk/internal/status"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// Backend is the remote knowledge service the TUI talks to.
type Backend interface {
	controller.Ingester
	controller.Asker
	controller.Resetter
}

// Options holds the dependencies of the TUI.
type Options struct {
	Config   *config.Config
	Backend  Backend
	Store    *session.Store
	Renderer *render.Renderer
	Theme    *styles.Theme

	// BackendURL is shown in the header.
	BackendURL string
}

// focusTarget is the widget receiving keystrokes.
type focusTarget int

const (
	focusCorpus focusTarget = iota
	focusIngestButton
	focusQuestion
	focusSendButton
	focusCount
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	cfg        *config.Config
	theme      *styles.Theme
	keys       KeyMap
	store      *session.Store
	renderer   *render.Renderer
	backendURL string

	ingestion *controller.Ingestion
	chat      *controller.Chat
	reset     *controller.Reset

	corpus   textarea.Model
	question textinput.Model
	chatView viewport.Model
	kbView   viewport.Model
	spinner  spinner.Model

	focus   focusTarget
	width   int
	height  int
	ready   bool
	follow  bool
	notice  string
	version uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the TUI model and its controllers.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	store := opts.Store
	if store == nil {
		store = session.NewStore()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.New(render.Options{
			CitationExcerptLength: cfg.Render.CitationExcerptLength,
			Style:                 theme.ResolveGlamourStyle(cfg.Render.Style),
			DisableMarkdown:       cfg.Render.PlainText,
		})
	}

	corpus := textarea.New()
	corpus.Placeholder = "Paste text here, then press Ctrl+S or the Ingest button."
	corpus.ShowLineNumbers = false
	corpus.CharLimit = 0

	question := textinput.New()
	question.Placeholder = "Ask a question about the ingested text..."
	question.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Amber)

	ctx, cancel := context.WithCancel(context.Background())

	reporter := status.Logged{Next: store}
	m := &Model{
		cfg:        cfg,
		theme:      theme,
		keys:       DefaultKeyMap(),
		store:      store,
		renderer:   renderer,
		backendURL: opts.BackendURL,
		ingestion:  controller.NewIngestion(opts.Backend, store, reporter),
		chat:       controller.NewChat(opts.Backend, renderer, store, reporter),
		reset:      controller.NewReset(opts.Backend, reporter),
		corpus:     corpus,
		question:   question,
		chatView:   viewport.New(40, 10),
		kbView:     viewport.New(40, 10),
		spinner:    sp,
		ctx:        ctx,
		cancel:     cancel,
	}
	m.ingestion.SetSurface(corpusSurface{m})
	m.chat.SetSurface(chatSurface{m})
	m.corpus.Focus()
	return m
}

// Init starts the cursor blink, the spinner and the session reset.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if !m.cfg.Backend.SkipReset {
		cmds = append(cmds, m.startReset())
	}
	return tea.Batch(cmds...)
}

// Store returns the session store backing the view.
func (m *Model) Store() *session.Store {
	return m.store
}

// =============================================================================
// SURFACES
// =============================================================================

// corpusSurface lets the ingestion controller clear the corpus input.
type corpusSurface struct{ m *Model }

func (s corpusSurface) ClearInput() { s.m.corpus.Reset() }

// chatSurface lets the chat controller clear the question and scroll.
type chatSurface struct{ m *Model }

func (s chatSurface) ClearInput() { s.m.question.Reset() }

func (s chatSurface) ScrollToLatest() { s.m.follow = true }

// =============================================================================
// FOCUS
// =============================================================================

func (m *Model) setFocus(f focusTarget) tea.Cmd {
	m.focus = (f + focusCount) % focusCount
	m.corpus.Blur()
	m.question.Blur()
	switch m.focus {
	case focusCorpus:
		return m.corpus.Focus()
	case focusQuestion:
		return m.question.Focus()
	}
	return nil
}
