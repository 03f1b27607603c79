// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Per-run dependencies of the commands.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragdesk/internal/backend"
	"github.com/jeranaias/ragdesk/internal/config"
	"github.com/jeranaias/ragdesk/internal/render"
	"github.com/jeranaias/ragdesk/internal/status"
	"github.com/jeranaias/ragdesk/internal/ui/styles"
)

// Env bundles what a command needs: configuration, the backend client and
// the standard streams.
type Env struct {
	Config *config.Config
	Client *backend.Client

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinTTY is true when Stdin is an interactive terminal.
	StdinTTY bool
	// Styled enables colors and glamour styling on Stdout.
	Styled bool
}

// NewEnv builds the Env for a real process from the process-wide config
// and the global flags.
func NewEnv(args Args) *Env {
	cfg := config.Global()
	if args.URL != "" {
		cfg.Backend.URL = args.URL
	}
	lipgloss.SetColorProfile(GetColorProfile())

	return &Env{
		Config:   cfg,
		Client:   NewClient(cfg),
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		StdinTTY: IsTTY(),
		Styled:   ColorsEnabled() && !args.JSON,
	}
}

// NewClient creates the backend client described by cfg.
func NewClient(cfg *config.Config) *backend.Client {
	return backend.NewClientWithConfig(&backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout(),
	})
}

// Reporter returns the status sink for a command: every line is logged,
// and shown on stderr unless --quiet or --json.
func (e *Env) Reporter(args Args) status.Reporter {
	if args.Quiet || args.JSON {
		return status.Logged{}
	}
	return status.Multi(status.Logged{}, status.NewWriter(e.Stderr, e.Styled))
}

// Renderer builds the answer renderer for format.
func (e *Env) Renderer(format render.Format) *render.Renderer {
	style := "notty"
	if e.Styled {
		style = styles.NewTheme(e.Config.UI.Theme).ResolveGlamourStyle(e.Config.Render.Style)
	}
	wrap := e.Config.Render.WordWrap
	if e.Styled && wrap > 0 {
		wrap = min(wrap, GetTerminalWidth())
	}
	return render.New(render.Options{
		Format:                format,
		CitationExcerptLength: e.Config.Render.CitationExcerptLength,
		WordWrap:              wrap,
		Style:                 style,
		DisableMarkdown:       e.Config.Render.PlainText,
	})
}

// ReadText returns the text named by file ("-" is stdin), else the inline
// text, else piped stdin. It returns a UsageError when there is nothing.
func (e *Env) ReadText(command, inline, file string) (string, error) {
	switch {
	case file == "-":
		return e.readStdin(command)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", NewCommandError(command, "read file", err)
		}
		log.Printf("CLI_READ | command=%s file=%s bytes=%d", command, file, len(data))
		return string(data), nil
	case strings.TrimSpace(inline) != "":
		return inline, nil
	case !e.StdinTTY && e.Stdin != nil:
		return e.readStdin(command)
	}
	return "", NewUsageError(fmt.Sprintf("%s needs text", command),
		fmt.Sprintf(`ragdesk %s "some text"  or  ragdesk %s --file notes.md`, command, command))
}

func (e *Env) readStdin(command string) (string, error) {
	data, err := io.ReadAll(e.Stdin)
	if err != nil {
		return "", NewCommandError(command, "read stdin", err)
	}
	return string(data), nil
}
