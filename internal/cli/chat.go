// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-based chat REPL.
//
// Each line is a question; lines starting with "/" are commands. Input
// history is kept across runs in the config directory.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/export"
	"github.com/jeranaias/ragdesk/internal/model"
	"github.com/jeranaias/ragdesk/internal/render"
	"github.com/jeranaias/ragdesk/internal/session"
)

const chatPrompt = "ragdesk> "

const chatHelp = `Type a question and press Enter.
  /ingest TEXT       teach text
  /file PATH         teach a file
  /kb                show what was taught this session
  /reset             wipe the backend knowledge store
  /export [md|json]  write the session transcript
  /quit              leave (Ctrl+D works too)`

// =============================================================================
// INPUT
// =============================================================================

// LineReader reads one line of input after showing prompt.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads history from historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return c
}

// Prompt reads a line with history navigation.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with 0600 permissions and restores the terminal.
func (c *ChatCLI) Close() {
	if c.historyFile != "" {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// scannerReader reads lines from a non-interactive stream.
type scannerReader struct {
	sc *bufio.Scanner
}

func (r scannerReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// =============================================================================
// SESSION
// =============================================================================

// chatSession is one REPL run: its own session store and controllers.
type chatSession struct {
	env       *Env
	store     *session.Store
	chat      *controller.Chat
	ingestion *controller.Ingestion
	reset     *controller.Reset
}

func newChatSession(env *Env, args Args) *chatSession {
	store := session.NewStore()
	reporter := env.Reporter(args)
	return &chatSession{
		env:       env,
		store:     store,
		chat:      controller.NewChat(env.Client, env.Renderer(render.FormatTerminal), store, reporter),
		ingestion: controller.NewIngestion(env.Client, store, reporter),
		reset:     controller.NewReset(env.Client, reporter),
	}
}

// RunChat handles the "chat" command.
func RunChat(ctx context.Context, env *Env, args Args) error {
	if args.JSON {
		return NewUsageError("chat does not support --json", "ragdesk ask --json \"question\"")
	}

	var reader LineReader
	if env.StdinTTY {
		historyFile, err := env.Config.HistoryPath()
		if err == nil {
			_ = ensureParent(historyFile)
		}
		cli := NewChatCLI(historyFile)
		defer cli.Close()
		reader = cli
		fmt.Fprintln(env.Stdout, TitleStyle.Render("ragdesk chat")+" "+DimStyle.Render(env.Client.BaseURL()+"  (/help for commands)"))
	} else {
		reader = scannerReader{sc: bufio.NewScanner(env.Stdin)}
	}

	s := newChatSession(env, args)
	return s.loop(ctx, reader)
}

func (s *chatSession) loop(ctx context.Context, reader LineReader) error {
	for {
		input, err := reader.Prompt(chatPrompt)
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				return err
			}
			s.finish()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.finish()
			return nil
		}

		if strings.HasPrefix(input, "/") {
			more, err := s.command(ctx, input)
			if err != nil {
				fmt.Fprintf(s.env.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !more {
				s.finish()
				return nil
			}
			continue
		}

		s.ask(ctx, input)
		if ctx.Err() != nil {
			s.finish()
			return nil
		}
	}
}

// ask sends one question and prints the answer or the failure text.
func (s *chatSession) ask(ctx context.Context, question string) {
	reply, err := s.chat.Send(ctx, question)
	if err != nil && reply.Status != model.StatusFailed {
		fmt.Fprintf(s.env.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}
	if reply.Status == model.StatusFailed {
		fmt.Fprintln(s.env.Stdout, ErrorStyle.Render(reply.Text))
		return
	}
	fmt.Fprintln(s.env.Stdout, reply.Text)
	fmt.Fprintln(s.env.Stdout)
}

// command runs a slash command. It returns false to end the session.
func (s *chatSession) command(ctx context.Context, input string) (bool, error) {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/?":
		fmt.Fprintln(s.env.Stdout, chatHelp)

	case "/ingest", "/teach":
		_, err := s.ingestion.Ingest(ctx, rest)
		return true, err

	case "/file":
		if rest == "" {
			return true, NewUsageError("/file needs a path", "/file notes.md")
		}
		text, err := s.env.ReadText("ingest", "", rest)
		if err != nil {
			return true, err
		}
		_, err = s.ingestion.Ingest(ctx, text)
		return true, err

	case "/kb":
		fmt.Fprintln(s.env.Stdout, session.KnowledgeView(s.store.Snapshot().Knowledge()))

	case "/reset":
		return true, s.reset.Do(ctx)

	case "/export":
		path, err := s.export(rest)
		if err != nil {
			return true, err
		}
		fmt.Fprintln(s.env.Stdout, SuccessStyle.Render("Exported to "+path))

	default:
		return true, NewUsageError("unknown command "+name, "/help")
	}
	return true, nil
}

func (s *chatSession) export(format string) (string, error) {
	dir, err := s.env.Config.ExportDir()
	if err != nil {
		return "", err
	}
	opts := &export.Options{OutputDir: dir, IncludeMetadata: true, IncludeTimestamps: true}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return "", NewUsageError(err.Error(), "/export md")
	}
	t := export.FromState(s.store.ID(), s.store.StartTime(), s.store.Snapshot())
	path, err := export.ExportToFile(t, exporter, opts)
	if err == nil {
		log.Printf("EXPORT_COMPLETE | path=%s", path)
	}
	return path, err
}

// finish prints the summary and saves the session to history.
func (s *chatSession) finish() {
	s.printSummary()
	t := export.FromState(s.store.ID(), s.store.StartTime(), s.store.Snapshot())
	saved, err := SaveSession(context.Background(), s.env.Config, t)
	if err != nil {
		log.Printf("HISTORY_SAVE_ERROR | id=%s err=%v", s.store.ID(), err)
		fmt.Fprintf(s.env.Stderr, "%s session not saved: %v\n", ErrorStyle.Render("[Warning]"), err)
		return
	}
	if saved {
		id := shortSessionID(s.store.ID())
		fmt.Fprintln(s.env.Stdout, DimStyle.Render("Saved. Reopen with: ragdesk history show "+id))
	}
}

func (s *chatSession) printSummary() {
	state := s.store.Snapshot()
	questions := 0
	for _, m := range state.Messages() {
		if m.Role == model.RoleUser {
			questions++
		}
	}
	fmt.Fprintln(s.env.Stdout, DimStyle.Render(fmt.Sprintf(
		"Session %s: %d questions, %d ingests.",
		shortSessionID(s.store.ID()), questions, len(state.Knowledge()))))
}

func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
